// Package observability provides domain metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// ToggleTotal counts like and subscription toggles by resulting state.
	ToggleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_toggle_total",
		Help: "Total number of like and subscription toggles",
	}, []string{"kind", "state"})

	// VideoViewsTotal counts view increments from the video detail page.
	VideoViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidtube_video_views_total",
		Help: "Total number of recorded video views",
	})

	// CascadeStepFailures counts cleanup steps that failed after a primary delete.
	CascadeStepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_cascade_step_failures_total",
		Help: "Total number of failed cascade cleanup steps",
	}, []string{"step"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidtube_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ToggleState labels the outcome of a toggle.
func ToggleState(active bool) string {
	if active {
		return "on"
	}
	return "off"
}

const latencyStartKey = "vidtube:query_start"

// QueryMetricsPlugin is a GORM plugin that feeds DatabaseQueryLatency.
type QueryMetricsPlugin struct{}

// Name implements gorm.Plugin.
func (QueryMetricsPlugin) Name() string {
	return "vidtube:query_metrics"
}

// Initialize registers before and after callbacks on every processor.
func (QueryMetricsPlugin) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(latencyStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(latencyStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		operation string
		before    func(string, func(*gorm.DB)) error
		after     func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, s := range steps {
		if err := s.before("vidtube:before_"+s.operation, before); err != nil {
			return err
		}
		if err := s.after("vidtube:after_"+s.operation, after(s.operation)); err != nil {
			return err
		}
	}
	return nil
}
