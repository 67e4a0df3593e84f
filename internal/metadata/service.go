// Package metadata combines the discovery and details providers behind a
// cache and exposes their status over HTTP.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
)

var ErrProviderNotFound = errors.New("metadata provider not found")

const genresKey = "tmdb:genres"

// ProviderStatus describes one upstream provider.
type ProviderStatus struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Configured bool   `json:"configured"`
	Error      string `json:"error,omitempty"`
}

// Service routes lookups to the configured providers and caches details and
// the genre map. Discovery listings are never cached.
type Service struct {
	mu        sync.RWMutex
	discovery DiscoveryClient
	details   DetailsClient

	titleCache   *Cache[*watchmode.TitleDetails]
	detailsCache *Cache[*tmdb.TitleDetails]
	genreCache   *Cache[map[int]string]

	logger zerolog.Logger
}

// NewService creates a metadata service with real API clients.
func NewService(cfg *config.Config, logger zerolog.Logger) *Service {
	return NewServiceWithClients(
		watchmode.NewClient(cfg.Metadata.Watchmode, cfg.Catalog.SourceID, cfg.Catalog.Jurisdiction, logger),
		tmdb.NewClient(cfg.Metadata.TMDB, logger),
		logger,
	)
}

// NewServiceWithClients creates a metadata service with custom clients (for testing/mocking).
func NewServiceWithClients(discovery DiscoveryClient, details DetailsClient, logger zerolog.Logger) *Service {
	cacheCfg := DefaultCacheConfig()
	return &Service{
		discovery:    discovery,
		details:      details,
		titleCache:   NewCache[*watchmode.TitleDetails](cacheCfg),
		detailsCache: NewCache[*tmdb.TitleDetails](cacheCfg),
		genreCache:   NewCache[map[int]string](cacheCfg),
		logger:       logger.With().Str("component", "metadata").Logger(),
	}
}

// SetClients replaces both providers and drops everything cached from the
// previous ones.
func (s *Service) SetClients(discovery DiscoveryClient, details DetailsClient) {
	s.mu.Lock()
	s.discovery = discovery
	s.details = details
	s.mu.Unlock()

	s.ClearCache()
	s.logger.Info().Str("discovery", discovery.Name()).Str("details", details.Name()).Msg("Switched metadata providers")
}

func (s *Service) clients() (DiscoveryClient, DetailsClient) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discovery, s.details
}

// ListTitles returns every title the discovery provider reports.
func (s *Service) ListTitles(ctx context.Context) ([]watchmode.Title, error) {
	discovery, _ := s.clients()
	return discovery.ListTitles(ctx)
}

// GetTitle returns discovery details for one title.
func (s *Service) GetTitle(ctx context.Context, id string) (*watchmode.TitleDetails, error) {
	key := "watchmode:title:" + id
	if cached, ok := s.titleCache.Get(key); ok {
		return cached, nil
	}

	discovery, _ := s.clients()
	title, err := discovery.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	s.titleCache.Set(key, title)
	return title, nil
}

// GetTitleDetails returns provider details for a film or series.
func (s *Service) GetTitleDetails(ctx context.Context, id int, isMovie bool) (*tmdb.TitleDetails, error) {
	key := detailsKey(id, isMovie)
	if cached, ok := s.detailsCache.Get(key); ok {
		return cached, nil
	}

	_, details := s.clients()
	d, err := details.GetTitleDetails(ctx, id, isMovie)
	if err != nil {
		return nil, err
	}
	s.detailsCache.Set(key, d)
	return d, nil
}

// GetGenres returns the genre id to name map.
func (s *Service) GetGenres(ctx context.Context) (map[int]string, error) {
	if cached, ok := s.genreCache.Get(genresKey); ok {
		return cached, nil
	}

	_, details := s.clients()
	genres, err := details.GetGenres(ctx)
	if err != nil {
		return nil, err
	}
	s.genreCache.Set(genresKey, genres)
	return genres, nil
}

// GetImageURL builds an image URL from a provider path.
func (s *Service) GetImageURL(path, size string) string {
	_, details := s.clients()
	return details.GetImageURL(path, size)
}

// InvalidateDetails forgets the cached details of one title so the next
// lookup goes upstream.
func (s *Service) InvalidateDetails(id int, isMovie bool) {
	s.detailsCache.Delete(detailsKey(id, isMovie))
}

// ClearCache drops every cached response.
func (s *Service) ClearCache() {
	s.titleCache.Clear()
	s.detailsCache.Clear()
	s.genreCache.Clear()
	s.logger.Debug().Msg("Cleared metadata cache")
}

// Status reports whether each provider is configured.
func (s *Service) Status() []ProviderStatus {
	discovery, details := s.clients()
	return []ProviderStatus{
		{Name: discovery.Name(), Role: "discovery", Configured: discovery.IsConfigured()},
		{Name: details.Name(), Role: "details", Configured: details.IsConfigured()},
	}
}

// TestProvider checks connectivity to the named provider.
func (s *Service) TestProvider(ctx context.Context, name string) error {
	discovery, details := s.clients()
	switch name {
	case details.Name():
		return details.Test(ctx)
	case discovery.Name():
		if !discovery.IsConfigured() {
			return fmt.Errorf("%s: %w", name, watchmode.ErrAPIKeyMissing)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

// Close stops the cache sweepers.
func (s *Service) Close() {
	s.titleCache.Stop()
	s.detailsCache.Stop()
	s.genreCache.Stop()
}

func detailsKey(id int, isMovie bool) string {
	kind := "tv"
	if isMovie {
		kind = "movie"
	}
	return "tmdb:" + kind + ":" + strconv.Itoa(id)
}
