package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidtube/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendOrigin = "https://app.vidtube.test"

func withFrontendOrigin(cfg *config.Config) {
	cfg.AllowedOrigins = frontendOrigin
}

// exhaustCatalogLimit spends the global per-IP budget on the public catalog.
func exhaustCatalogLimit(t *testing.T, ts *testServer) {
	t.Helper()
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?limit=1", nil)
		req.Header.Set("Origin", frontendOrigin)
		resp, err := ts.app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i)
		_ = resp.Body.Close()
	}
}

func TestRateLimitedCatalogKeepsEnvelopeAndCORS(t *testing.T) {
	ts := newTestServer(t, withFrontendOrigin)
	exhaustCatalogLimit(t, ts)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	req.Header.Set("Origin", frontendOrigin)
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, frontendOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, fiber.StatusTooManyRequests, env.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "Too many requests, please try again later", env.Message)
	assert.NotNil(t, env.Errors)
	assert.Empty(t, env.Errors)
}

func TestPreflightSkipsRateLimit(t *testing.T) {
	ts := newTestServer(t, withFrontendOrigin)
	exhaustCatalogLimit(t, ts)

	status, _ := ts.call(t, http.MethodGet, "/api/v1/videos", "", nil)
	require.Equal(t, fiber.StatusTooManyRequests, status)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/comments/1", nil)
	req.Header.Set("Origin", frontendOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, frontendOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestDisallowedOriginGetsNoCORSHeaders(t *testing.T) {
	ts := newTestServer(t, withFrontendOrigin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	req.Header.Set("Origin", "https://elsewhere.test")
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
