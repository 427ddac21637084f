package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/seuros/jogo/internal/auth"
	"github.com/seuros/jogo/internal/calendar"
	"github.com/seuros/jogo/internal/httpx"
	"github.com/seuros/jogo/internal/seed"
	"github.com/seuros/jogo/internal/store/memory"
)

var fixedNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type testEnv struct {
	app   *fiber.App
	store *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.New(clock)
	_, err := seed.Seed(context.Background(), st, false)
	require.NoError(t, err)

	issuer, err := auth.NewIssuer("test-secret", time.Hour, clock)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(true)})
	New(Options{
		Store:       st,
		Calendar:    calendar.New(clock, time.UTC),
		Tokens:      issuer,
		Environment: "test",
		Version:     "1.0.0",
	}).Mount(app)

	return &testEnv{app: app, store: st}
}

// do sends a JSON request and decodes the JSON response into a map.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// register creates a user and returns its token.
func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":     email,
		"password":  "secret123",
		"firstName": "Ada",
		"lastName":  "Lovelace",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["data"].(map[string]any)["token"].(string)
}

// createFunnel creates a funnel for token and returns its id.
func (e *testEnv) createFunnel(t *testing.T, token, name string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/funnels", token, map[string]any{
		"name": name,
		"steps": []map[string]any{
			{"type": "landing", "title": "Welcome"},
			{"type": "checkout", "title": "Pay"},
		},
	})
	require.Equal(t, http.StatusCreated, status, body)
	return body["data"].(map[string]any)["id"].(string)
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "data is not an object: %v", body)
	return d
}
