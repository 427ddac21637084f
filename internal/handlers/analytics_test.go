package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func track(t *testing.T, env *testEnv, funnelID, event string, data map[string]any) (int, map[string]any) {
	t.Helper()
	body := map[string]any{"funnelId": funnelID, "event": event}
	if data != nil {
		body["data"] = data
	}
	return env.do(t, http.MethodPost, "/api/analytics/track", "", body)
}

func TestTrackEvent(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createFunnel(t, token, "Launch")

	status, body := track(t, env, id, "visitor", map[string]any{"source": "google"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Event tracked successfully", body["message"])

	status, _ = track(t, env, id, "conversion", map[string]any{"revenue": "49.50"})
	require.Equal(t, http.StatusOK, status)

	_, got := env.do(t, http.MethodGet, "/api/funnels/"+id, token, nil)
	stats := data(t, got)["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["visitors"])
	assert.Equal(t, float64(1), stats["conversions"])
	assert.InDelta(t, 49.5, stats["revenue"], 0.001)
	assert.InDelta(t, 100.0, stats["conversionRate"], 0.001)
}

func TestTrackEventErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createFunnel(t, token, "Launch")

	tests := []struct {
		name     string
		funnelID string
		event    string
		data     map[string]any
		status   int
	}{
		{"missing funnel id", "", "visitor", nil, http.StatusBadRequest},
		{"missing event", id, "", nil, http.StatusBadRequest},
		{"unknown event", id, "click", nil, http.StatusBadRequest},
		{"non numeric revenue", id, "conversion", map[string]any{"revenue": "lots"}, http.StatusBadRequest},
		{"nan revenue", id, "conversion", map[string]any{"revenue": "NaN"}, http.StatusBadRequest},
		{"infinite revenue", id, "conversion", map[string]any{"revenue": "Inf"}, http.StatusBadRequest},
		{"negative infinite duration", id, "session_duration", map[string]any{"duration": "-Infinity"}, http.StatusBadRequest},
		{"unknown funnel", "does-not-exist", "visitor", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := track(t, env, tt.funnelID, tt.event, tt.data)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, false, body["success"])
		})
	}

	status, body := env.do(t, http.MethodGet, "/api/funnels/"+id, token, nil)
	assert.Equal(t, http.StatusOK, status, body)
	status, body = env.do(t, http.MethodGet, "/api/analytics/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, status, body)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createFunnel(t, token, "Launch")

	for range 3 {
		status, _ := track(t, env, id, "visitor", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := track(t, env, id, "conversion", map[string]any{"revenue": 10})
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/analytics/dashboard?period=7", token, nil)
	require.Equal(t, http.StatusOK, status, body)

	dash := data(t, body)
	assert.Equal(t, float64(7), dash["period"])
	stats := dash["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["totalVisitors"])
	assert.Equal(t, float64(1), stats["totalConversions"])
	assert.InDelta(t, 10.0, stats["totalRevenue"], 0.001)

	daily := dash["dailyAnalytics"].([]any)
	require.Len(t, daily, 1)
	assert.Equal(t, "2025-03-14", daily[0].(map[string]any)["date"])

	top := dash["topFunnels"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "Launch", top[0].(map[string]any)["name"])
}

func TestDashboardRejectsBadPeriod(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	for _, period := range []string{"0", "abc", "366"} {
		status, body := env.do(t, http.MethodGet, "/api/analytics/dashboard?period="+period, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, period)
		assert.Equal(t, "period must be an integer between 1 and 365", body["message"])
	}
}

func TestDashboardEmpty(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	status, body := env.do(t, http.MethodGet, "/api/analytics/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	dash := data(t, body)
	assert.Equal(t, float64(30), dash["period"])
	assert.Equal(t, []any{}, dash["dailyAnalytics"])
	assert.Equal(t, []any{}, dash["topFunnels"])
}

func TestFunnelAnalytics(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createFunnel(t, token, "Launch")

	status, _ := track(t, env, id, "page_view", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/analytics/funnel/"+id, token, nil)
	require.Equal(t, http.StatusOK, status, body)
	report := data(t, body)
	assert.Equal(t, id, report["funnel"].(map[string]any)["id"])
	require.Len(t, report["analytics"], 1)

	intruder := env.register(t, "grace@example.com")
	status, body = env.do(t, http.MethodGet, "/api/analytics/funnel/"+id, intruder, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Funnel not found", body["message"])
}
