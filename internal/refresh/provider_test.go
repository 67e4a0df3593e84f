package refresh

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/circuitbreaker"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metadata/mock"
	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
	"github.com/slipstream/flixcat/internal/startup"
	"github.com/slipstream/flixcat/internal/testutil"
)

// flakyTMDB serves genre lists and film details, answering the first
// failFirst detail requests with 503.
func flakyTMDB(t *testing.T, failFirst int64, detailCalls *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	genres := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"genres":[{"id":18,"name":"Drama"}]}`)
	}
	mux.HandleFunc("/genre/movie/list", genres)
	mux.HandleFunc("/genre/tv/list", genres)
	mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		if detailCalls.Add(1) <= failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/movie/")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":%s,"title":"Film %s","original_language":"en","release_date":"2020-05-01",`+
			`"genres":[{"id":18,"name":"Drama"}],`+
			`"release_dates":{"results":[{"iso_3166_1":"GB","release_dates":[{"certification":"15","release_date":"2020-05-01T00:00:00.000Z","type":3}]}]}}`,
			id, id)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func discoveredFilms(n int) []mock.Fixture {
	fixtures := make([]mock.Fixture, 0, n)
	for i := 0; i < n; i++ {
		fixtures = append(fixtures, mock.Fixture{
			Discovery: watchmode.Title{ID: 9000 + i, Title: fmt.Sprintf("Film %d", i), Type: "movie", TmdbID: 100 + i},
		})
	}
	return fixtures
}

func TestRefresh_WaitsOutOpenCircuitBreaker(t *testing.T) {
	var detailCalls atomic.Int64
	srv := flakyTMDB(t, 5, &detailCalls)

	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)

	client := tmdb.NewClient(config.TMDBConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		Timeout:      5,
		RateLimit:    config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 100},
		CircuitBreaker: config.CircuitBreakerConfig{
			ConsecutiveFailures: 5,
			Timeout:             50 * time.Millisecond,
		},
	}, tdb.Logger)

	cfg := config.Default().Catalog
	cfg.ProviderWait = 60 * time.Millisecond
	cfg.ProviderRetries = 20

	store := catalog.NewStore(tdb.Conn, cfg.Region, tdb.Logger)
	svc := NewService(store, mock.NewWatchmodeClient(discoveredFilms(60)), client, cfg, tdb.Logger)
	svc.genreRetry = startup.RetryConfig{MaxAttempts: 1}

	result, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 60, result.Discovered)
	assert.Equal(t, 5, result.Failed, "only the titles whose own fetch failed are dropped")
	assert.Equal(t, 55, result.Inserted)
	assert.Equal(t, int64(60), detailCalls.Load())

	state, err := store.GetRefreshState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusCompleted, state.Status)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 55, n)
}

type unavailableMetadata struct {
	*mock.TMDBClient
	calls atomic.Int64
}

func (m *unavailableMetadata) GetTitleDetails(ctx context.Context, id int, isMovie bool) (*tmdb.TitleDetails, error) {
	m.calls.Add(1)
	return nil, fmt.Errorf("tmdb: %w", circuitbreaker.ErrOpen)
}

func TestRefresh_ProviderUnavailableFailsWithoutReplacing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Refresh(ctx)
	require.NoError(t, err)

	down := &unavailableMetadata{TMDBClient: env.details}
	env.svc.metadata = down
	env.svc.providerRetry.InitialDelay = 5 * time.Millisecond
	env.svc.providerRetry.MaxDelay = 5 * time.Millisecond
	env.svc.providerRetry.MaxAttempts = 3

	_, err = env.svc.Refresh(ctx)
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, int64(3), down.calls.Load(), "the first title is retried, later titles are not attempted")

	state, err := env.store.GetRefreshState(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusFailed, state.Status)
	assert.Equal(t, int64(1), state.CurrentGeneration)

	n, err := env.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, n, "previous catalog kept")
}
