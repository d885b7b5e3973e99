package middleware

import (
	"strconv"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// ActiveWebSockets is the number of open notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidtube_active_websockets",
		Help: "Number of open WebSocket connections",
	})

	// HTTPErrors counts 4xx and 5xx responses by route template.
	HTTPErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_http_errors_total",
		Help: "Total number of error responses by route and status",
	}, []string{"route", "status"})
)

// InitMetrics creates the request metrics collector for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware records request metrics and counts error responses per
// route template so path IDs do not explode label cardinality.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var err error
		if prom != nil {
			err = prom.Middleware(c)
		} else {
			err = c.Next()
		}

		if status := c.Response().StatusCode(); status >= fiber.StatusBadRequest {
			route := c.Path()
			if r := c.Route(); r != nil && r.Path != "" {
				route = r.Path
			}
			HTTPErrors.WithLabelValues(route, strconv.Itoa(status)).Inc()
		}
		return err
	}
}
