package refresh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/flixcat/internal/catalog"
)

func newHandlerEcho(t *testing.T) (*echo.Echo, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	e := echo.New()
	NewHandlers(env.svc).RegisterRoutes(e.Group("/api/v1"))
	return e, env
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlers_StatusBeforeFirstRefresh(t *testing.T) {
	e, _ := newHandlerEcho(t)

	rec := serve(e, http.MethodGet, "/api/v1/catalog/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Status(t *testing.T) {
	e, env := newHandlerEcho(t)

	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	rec := serve(e, http.MethodGet, "/api/v1/catalog/status")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(catalog.StatusCompleted), body["status"])
	assert.Equal(t, float64(12), body["totalTitles"])
	assert.Equal(t, false, body["refreshing"])
	assert.Equal(t, false, body["rerating"])
	assert.Contains(t, body, "lastRefresh")
	assert.NotContains(t, body, "lastRerate")
}

func TestHandlers_TriggerRefresh(t *testing.T) {
	e, env := newHandlerEcho(t)

	rec := serve(e, http.MethodPost, "/api/v1/catalog/refresh")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool { return env.svc.LastRefresh() != nil }, 10*time.Second, 20*time.Millisecond)

	state, err := env.store.GetRefreshState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCompleted, state.Status)
}

func TestHandlers_TriggerRerate(t *testing.T) {
	e, env := newHandlerEcho(t)

	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	rec := serve(e, http.MethodPost, "/api/v1/catalog/rerate")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool { return env.svc.LastRerate() != nil }, 10*time.Second, 20*time.Millisecond)
	assert.Equal(t, adultTitles, env.svc.LastRerate().Checked)
}
