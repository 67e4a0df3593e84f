package mock

import (
	"context"
	"maps"
	"strconv"
	"sync"

	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
)

// WatchmodeClient is a mock discovery provider.
type WatchmodeClient struct {
	mu       sync.Mutex
	fixtures []Fixture
	listErr  error
}

// NewWatchmodeClient creates a mock discovery provider over fixtures. A nil
// slice uses DefaultFixtures.
func NewWatchmodeClient(fixtures []Fixture) *WatchmodeClient {
	if fixtures == nil {
		fixtures = DefaultFixtures
	}
	return &WatchmodeClient{fixtures: fixtures}
}

func (c *WatchmodeClient) Name() string {
	return "watchmode-mock"
}

func (c *WatchmodeClient) IsConfigured() bool {
	return true
}

// SetFixtures replaces the listed catalog.
func (c *WatchmodeClient) SetFixtures(fixtures []Fixture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixtures = fixtures
}

// SetListError makes ListTitles fail with err until cleared with nil.
func (c *WatchmodeClient) SetListError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listErr = err
}

func (c *WatchmodeClient) ListTitles(ctx context.Context) ([]watchmode.Title, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listErr != nil {
		return nil, c.listErr
	}

	titles := make([]watchmode.Title, 0, len(c.fixtures))
	for _, f := range c.fixtures {
		titles = append(titles, f.Discovery)
	}
	return titles, nil
}

func (c *WatchmodeClient) GetTitle(ctx context.Context, id string) (*watchmode.TitleDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.fixtures {
		if strconv.Itoa(f.Discovery.ID) != id {
			continue
		}
		d := f.Discovery
		return &watchmode.TitleDetails{
			ID:       d.ID,
			Title:    d.Title,
			Type:     d.Type,
			Year:     d.Year,
			ImdbID:   d.ImdbID,
			TmdbID:   d.TmdbID,
			TmdbType: d.TmdbType,
		}, nil
	}
	return nil, watchmode.ErrNotFound
}

// TMDBClient is a mock details provider.
type TMDBClient struct {
	mu        sync.Mutex
	fixtures  []Fixture
	genres    map[int]string
	genresErr error
	failures  map[int]error
	calls     int
}

// NewTMDBClient creates a mock details provider over fixtures. A nil slice
// uses DefaultFixtures.
func NewTMDBClient(fixtures []Fixture) *TMDBClient {
	if fixtures == nil {
		fixtures = DefaultFixtures
	}
	return &TMDBClient{
		fixtures: fixtures,
		genres:   maps.Clone(mockGenres),
		failures: make(map[int]error),
	}
}

func (c *TMDBClient) Name() string {
	return "tmdb-mock"
}

func (c *TMDBClient) IsConfigured() bool {
	return true
}

func (c *TMDBClient) Test(ctx context.Context) error {
	return nil
}

// SetFixtures replaces the details catalog.
func (c *TMDBClient) SetFixtures(fixtures []Fixture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixtures = fixtures
}

// FailTitle makes GetTitleDetails fail with err for id. A nil err clears it.
func (c *TMDBClient) FailTitle(id int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, id)
		return
	}
	c.failures[id] = err
}

// SetGenresError makes GetGenres fail with err until cleared with nil.
func (c *TMDBClient) SetGenresError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genresErr = err
}

// Calls returns how many detail lookups were made.
func (c *TMDBClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *TMDBClient) GetTitleDetails(ctx context.Context, id int, isMovie bool) (*tmdb.TitleDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if err, ok := c.failures[id]; ok {
		return nil, err
	}

	for _, f := range c.fixtures {
		if f.Details.ID == 0 || f.Details.ID != id {
			continue
		}
		// a series id requested as a film is a miss upstream too
		if f.Discovery.TmdbType != "" && (f.Discovery.TmdbType == "movie") != isMovie {
			continue
		}
		d := f.Details
		return &d, nil
	}
	return nil, tmdb.ErrNotFound
}

func (c *TMDBClient) GetGenres(ctx context.Context) (map[int]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genresErr != nil {
		return nil, c.genresErr
	}
	return maps.Clone(c.genres), nil
}

func (c *TMDBClient) GetImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}
