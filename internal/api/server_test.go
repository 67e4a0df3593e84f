package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metadata"
	"github.com/slipstream/flixcat/internal/metadata/mock"
	"github.com/slipstream/flixcat/internal/refresh"
	"github.com/slipstream/flixcat/internal/scheduler"
	"github.com/slipstream/flixcat/internal/testutil"
)

type testServer struct {
	*Server
	store   *catalog.Store
	refresh *refresh.Service
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tdb := testutil.NewTestDB(t)
	cfg := config.Default()
	cfg.Catalog.LeaseRenewEvery = 5

	meta := metadata.NewServiceWithClients(mock.NewWatchmodeClient(nil), mock.NewTMDBClient(nil), tdb.Logger)
	store := catalog.NewStore(tdb.Conn, cfg.Catalog.Region, tdb.Logger)
	refreshSvc := refresh.NewService(store, meta, meta, cfg.Catalog, tdb.Logger)

	sched, err := scheduler.New(tdb.Logger)
	require.NoError(t, err)
	require.NoError(t, sched.RegisterTask(scheduler.TaskConfig{
		ID: "noop", Name: "No-op", Cron: "0 0 1 1 *",
		Func: func(context.Context) error { return nil },
	}))

	server := NewServer(Services{
		Catalog:   store,
		Refresh:   refreshSvc,
		Metadata:  meta,
		Scheduler: sched,
	}, cfg, tdb.Logger)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = refreshSvc.Shutdown(ctx)
		_ = sched.Stop()
		_ = server.Shutdown(ctx)
		meta.Close()
		tdb.Close()
	})

	return &testServer{Server: server, store: store, refresh: refreshSvc}
}

func (ts *testServer) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	ts.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestStatus(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["titleCount"])
	assert.Equal(t, string(catalog.StatusPending), body["catalogStatus"])
	assert.Equal(t, "UK", body["region"])

	_, err := ts.refresh.Refresh(context.Background())
	require.NoError(t, err)

	rec = ts.do(http.MethodGet, "/api/v1/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(12), body["titleCount"])
	assert.Equal(t, string(catalog.StatusCompleted), body["catalogStatus"])
}

func TestRoutesAfterRefresh(t *testing.T) {
	ts := setupTestServer(t)

	_, err := ts.refresh.Refresh(context.Background())
	require.NoError(t, err)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/titles", http.StatusOK},
		{"/api/v1/titles?bbfcRatings=18", http.StatusOK},
		{"/api/v1/titles/stats", http.StatusOK},
		{"/api/v1/titles/does-not-exist", http.StatusNotFound},
		{"/api/v1/catalog/options", http.StatusOK},
		{"/api/v1/catalog/status", http.StatusOK},
		{"/api/v1/metadata/status", http.StatusOK},
		{"/api/v1/scheduler/tasks", http.StatusOK},
		{"/api/v1/scheduler/tasks/noop", http.StatusOK},
		{"/api/v1/scheduler/tasks/missing", http.StatusNotFound},
		{"/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := ts.do(http.MethodGet, tt.target)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := ts.do(http.MethodGet, "/api/v1/titles?bbfcRatings=18")
	var page catalog.TitlePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
}

func TestMetricsRecordRoutes(t *testing.T) {
	ts := setupTestServer(t)

	ts.do(http.MethodGet, "/api/v1/titles")

	rec := ts.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `route="/api/v1/titles"`), "api requests are labelled by route template")
}

func TestTriggerRoutesAreRateLimited(t *testing.T) {
	ts := setupTestServer(t)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, ts.do(http.MethodPost, "/api/v1/scheduler/tasks/missing/run").Code)
	}

	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)
}

func TestTriggerRefreshEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(http.MethodPost, "/api/v1/catalog/refresh")
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool { return ts.refresh.LastRefresh() != nil }, 10*time.Second, 20*time.Millisecond)

	n, err := ts.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
