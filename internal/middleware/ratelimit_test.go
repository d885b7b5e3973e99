package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit(t *testing.T) {
	t.Run("bypassed in test environment", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		allowed, err := CheckRateLimit(context.Background(), nil, "r", "1", 1, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("nil redis errors in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		allowed, err := CheckRateLimit(context.Background(), nil, "r", "1", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})

	t.Run("counts and expires window", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr, rdb := newMiniRedis(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, time.Minute, mr.TTL("rl:login:ip:1.2.3.4"))

		mr.FastForward(time.Minute + time.Second)
		allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	hit := func(app *fiber.App, path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("redis enforces limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newMiniRedis(t)
		app := fiber.New()
		app.Get("/test", RateLimit(rdb, 2, time.Minute, "test"), ok)

		assert.Equal(t, http.StatusOK, hit(app, "/test"))
		assert.Equal(t, http.StatusOK, hit(app, "/test"))
		assert.Equal(t, http.StatusTooManyRequests, hit(app, "/test"))
	})

	t.Run("falls back to local limiter without redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, 1, time.Hour), ok)

		assert.Equal(t, http.StatusOK, hit(app, "/test"))
		assert.Equal(t, http.StatusTooManyRequests, hit(app, "/test"))
	})

	t.Run("fail closed without redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/sensitive", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), ok)

		assert.Equal(t, http.StatusServiceUnavailable, hit(app, "/sensitive"))
	})
}

func TestLocalRateLimiter_RefillsAndForgets(t *testing.T) {
	l := NewLocalRateLimiter(1, time.Minute, 1, 5*time.Minute)
	now := time.Unix(1_700_000_000, 0)
	l.WithNowFunc(func() time.Time { return now })

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow("a"))

	now = now.Add(10 * time.Minute)
	l.Allow("c")
	l.mu.Lock()
	_, stillThere := l.visitors["b"]
	l.mu.Unlock()
	assert.False(t, stillThere)
}
