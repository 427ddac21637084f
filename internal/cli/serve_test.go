package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/jogo/internal/config"
	"github.com/seuros/jogo/internal/store/memory"
)

func testServerConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		StoreDriver:     config.DriverMemory,
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		Timezone:        "UTC",
		DefaultPeriod:   30,
		CORSOrigins:     []string{"http://localhost:3000"},
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
		ProxyMode:       config.ProxyNone,
	}
}

func TestNewServerServesHealth(t *testing.T) {
	app, err := newServer(testServerConfig(), memory.New(nil), nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Funnel Builder API is running", body["message"])
}

func TestNewServerRejectsBadTimezone(t *testing.T) {
	cfg := testServerConfig()
	cfg.Timezone = "Mars/Olympus"

	_, err := newServer(cfg, memory.New(nil), nil)
	assert.Error(t, err)
}

func TestNewServerRateLimitsAPI(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitMax = 2
	cfg.ProxyMode = config.ProxyXForwarded

	app, err := newServer(cfg, memory.New(nil), nil)
	require.NoError(t, err)

	get := func(path string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusOK, get("/api/health").StatusCode)
	assert.Equal(t, http.StatusOK, get("/api/health").StatusCode)

	resp := get("/api/health")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Too many requests from this IP, please try again later.")

	// The liveness probe sits outside /api.
	assert.Equal(t, http.StatusOK, get("/up").StatusCode)

	// Another forwarded client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.2")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewServerIgnoresForwardedHeaderWithoutProxyMode(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitMax = 1

	app, err := newServer(cfg, memory.New(nil), nil)
	require.NoError(t, err)

	first := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	first.Header.Set("X-Forwarded-For", "203.0.113.7")
	resp, err := app.Test(first)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A forged header does not buy a fresh budget.
	second := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	second.Header.Set("X-Forwarded-For", "198.51.100.2")
	resp, err = app.Test(second)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestCorsConfig(t *testing.T) {
	cfg := corsConfig([]string{"http://localhost:3000"})
	assert.True(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.ExposeHeaders, fiber.HeaderXRequestID)

	cfg = corsConfig([]string{"*"})
	assert.False(t, cfg.AllowCredentials)
}

func TestCorsPreflightIsNotRateLimited(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitMax = 1

	app, err := newServer(cfg, memory.New(nil), nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodOptions, "/api/funnels", nil)
		req.Header.Set(fiber.HeaderOrigin, "http://localhost:3000")
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodGet)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	}
}
