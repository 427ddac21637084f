package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	status, body := env.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{
		"firstName": "Augusta",
		"lastName":  "King",
		"bio":       "Analyst",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Profile updated successfully", body["message"])
	assert.Equal(t, "Augusta", data(t, body)["firstName"])

	status, body = env.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"firstName": "Only"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "First name and last name are required", body["message"])
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	status, body := env.do(t, http.MethodPut, "/api/users/password", token, map[string]any{
		"currentPassword": "wrong",
		"newPassword":     "another123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Current password is incorrect", body["message"])

	status, body = env.do(t, http.MethodPut, "/api/users/password", token, map[string]any{
		"currentPassword": "secret123",
		"newPassword":     "another123",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Password updated successfully", body["message"])

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "another123",
	})
	assert.Equal(t, http.StatusOK, status)
}

func TestUserStats(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createFunnel(t, token, "Launch")
	env.createFunnel(t, token, "Second")

	status, _ := env.do(t, http.MethodPut, "/api/funnels/"+id+"/publish", token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = track(t, env, id, "visitor", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/users/stats", token, nil)
	require.Equal(t, http.StatusOK, status, body)

	stats := data(t, body)
	assert.Equal(t, map[string]any{
		"draft":    float64(1),
		"active":   float64(1),
		"paused":   float64(0),
		"archived": float64(0),
	}, stats["funnels"])
	totals := stats["analytics"].(map[string]any)
	assert.Equal(t, float64(1), totals["totalVisitors"])
	assert.Equal(t, float64(0), totals["totalConversions"])
}
