// Package refresh rebuilds the regional catalog from the discovery and
// metadata providers and reconciles adult ratings.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/circuitbreaker"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
	"github.com/slipstream/flixcat/internal/metrics"
	"github.com/slipstream/flixcat/internal/rating"
	"github.com/slipstream/flixcat/internal/startup"
)

// Event types pushed to websocket clients.
const (
	EventRefreshStarted   = "catalog:refresh:started"
	EventRefreshProgress  = "catalog:refresh:progress"
	EventRefreshCompleted = "catalog:refresh:completed"
	EventRefreshFailed    = "catalog:refresh:failed"
	EventRerateCompleted  = "catalog:rerate:completed"
)

// Result summarises one refresh run.
type Result struct {
	Discovered int           `json:"discovered"`
	Inserted   int           `json:"inserted"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Unmatched  int           `json:"unmatched"`
	Generation int64         `json:"generation"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// Progress is the payload of refresh progress events.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Assembled int `json:"assembled"`
}

// Service runs the refresh pipeline and the re-rate job for one region.
type Service struct {
	store     Store
	discovery DiscoveryClient
	metadata  MetadataClient
	hub       Broadcaster
	resolver  rating.Resolver
	cfg       config.CatalogConfig

	instanceID    string
	genreRetry    startup.RetryConfig
	providerRetry startup.RetryConfig
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	rerating atomic.Bool

	mu          sync.RWMutex
	lastRefresh *Result
	lastRerate  *RerateReport

	logger zerolog.Logger
}

// NewService creates a refresh service.
func NewService(store Store, discovery DiscoveryClient, metadata MetadataClient, cfg config.CatalogConfig, logger zerolog.Logger) *Service {
	if cfg.LeaseRenewEvery <= 0 {
		cfg.LeaseRenewEvery = 100
	}
	if cfg.CastLimit <= 0 {
		cfg.CastLimit = 10
	}
	if cfg.ProviderWait <= 0 {
		cfg.ProviderWait = 30 * time.Second
	}
	if cfg.ProviderRetries <= 0 {
		cfg.ProviderRetries = 10
	}

	host, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		store:      store,
		discovery:  discovery,
		metadata:   metadata,
		resolver:   rating.NewResolver(cfg.Jurisdiction, cfg.FallbackJurisdiction),
		cfg:        cfg,
		instanceID: fmt.Sprintf("%s-%d", host, os.Getpid()),
		genreRetry: startup.DefaultRetryConfig(),
		providerRetry: startup.RetryConfig{
			InitialDelay: cfg.ProviderWait,
			MaxDelay:     cfg.ProviderWait,
			MaxAttempts:  cfg.ProviderRetries + 1,
			Multiplier:   1,
			Retryable:    providerUnavailable,
		},
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		logger: logger.With().Str("component", "refresh").Str("region", cfg.Region).Logger(),
	}
}

// SetBroadcaster sets the websocket hub used for progress events.
func (s *Service) SetBroadcaster(hub Broadcaster) {
	s.hub = hub
}

// LastRefresh returns the result of the most recent successful refresh.
func (s *Service) LastRefresh() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Refresh rebuilds the catalog. It returns ErrRefreshInProgress without
// touching the refresh state when another holder owns the lease.
func (s *Service) Refresh(ctx context.Context) (*Result, error) {
	start := time.Now()
	holder := s.instanceID + "/" + uuid.NewString()
	log := s.logger.With().Str("holder", holder).Logger()

	acquired, err := s.store.AcquireLease(ctx, holder, s.cfg.LeaseTTL)
	if err != nil {
		metrics.RecordRefresh("error", time.Since(start))
		return nil, fmt.Errorf("failed to acquire refresh lease: %w", err)
	}
	if !acquired {
		log.Info().Msg("Refresh already in progress, skipping")
		metrics.RecordRefresh("skipped", 0)
		return nil, ErrRefreshInProgress
	}

	// the lease and the final status must be written even if ctx was cancelled
	cleanupCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.store.ReleaseLease(cleanupCtx, holder); err != nil {
			log.Error().Err(err).Msg("Failed to release refresh lease")
		}
	}()

	log.Info().Msg("Starting catalog refresh")

	result, err := s.run(ctx, holder, log)
	if err != nil {
		s.markFailed(cleanupCtx, err, log)
		metrics.RecordRefresh("failed", time.Since(start))
		s.broadcast(EventRefreshFailed, map[string]string{"error": err.Error()})
		return nil, err
	}

	result.Duration = time.Since(start)
	result.FinishedAt = s.now()

	s.mu.Lock()
	s.lastRefresh = result
	s.mu.Unlock()

	metrics.RecordRefresh("completed", result.Duration)
	metrics.RecordRefreshTitles(result.Inserted, result.Skipped, result.Failed)
	metrics.RecordSnapshot(result.Generation, result.Inserted)

	log.Info().
		Int("discovered", result.Discovered).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("unmatched", result.Unmatched).
		Int64("generation", result.Generation).
		Dur("duration", result.Duration).
		Msg("Catalog refresh completed")

	s.broadcast(EventRefreshCompleted, result)
	return result, nil
}

func (s *Service) run(ctx context.Context, holder string, log zerolog.Logger) (*Result, error) {
	if err := s.beginUpdating(ctx, log); err != nil {
		return nil, err
	}
	s.broadcast(EventRefreshStarted, map[string]string{"region": s.cfg.Region})

	genres := s.loadGenres(ctx, log)

	discovered, err := s.discovery.ListTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(discovered) == 0 {
		return nil, ErrNoTitlesDiscovered
	}

	result := &Result{Discovered: len(discovered)}
	titles := make([]catalog.Title, 0, len(discovered))

	for i, d := range discovered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if (i+1)%s.cfg.LeaseRenewEvery == 0 {
			if err := s.store.RenewLease(ctx, holder, s.cfg.LeaseTTL); err != nil {
				return nil, fmt.Errorf("failed to renew refresh lease: %w", err)
			}
			s.broadcast(EventRefreshProgress, Progress{Processed: i + 1, Total: len(discovered), Assembled: len(titles)})
		}

		if d.TmdbID == 0 {
			result.Unmatched++
			log.Debug().Int("watchmodeId", d.ID).Str("title", d.Title).Msg("No TMDB id, skipping")
			continue
		}

		title, err := s.assembleWhenAvailable(ctx, d, genres, log)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if providerUnavailable(err) {
				return nil, fmt.Errorf("metadata provider unavailable: %w", err)
			}
			result.Failed++
			log.Warn().Err(err).Int("watchmodeId", d.ID).Int("tmdbId", d.TmdbID).Str("title", d.Title).Msg("Failed to process title")
			continue
		}
		titles = append(titles, *title)
	}

	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: %d discovered, %d failed", ErrNoTitlesAssembled, result.Discovered, result.Failed)
	}

	snap, err := s.store.ReplaceSnapshot(ctx, holder, titles)
	if err != nil {
		return nil, err
	}
	result.Inserted = snap.Inserted
	result.Skipped = snap.Skipped
	result.Generation = snap.Generation

	if err := s.store.SetRefreshStatus(ctx, catalog.StatusCompleted, ""); err != nil {
		return nil, err
	}
	return result, nil
}

// beginUpdating moves the state to updating. A row left in updating by a
// holder whose lease expired is closed out as failed first.
func (s *Service) beginUpdating(ctx context.Context, log zerolog.Logger) error {
	state, _, err := s.store.EnsureRefreshState(ctx)
	if err != nil {
		return err
	}

	if state.Status == catalog.StatusUpdating {
		log.Warn().Time("lastUpdated", state.LastUpdated).Msg("Previous refresh was abandoned")
		if err := s.store.SetRefreshStatus(ctx, catalog.StatusFailed, "abandoned: lease expired"); err != nil {
			return err
		}
	}

	return s.store.SetRefreshStatus(ctx, catalog.StatusUpdating, "")
}

// loadGenres returns the genre map, or an empty one when the provider is
// unreachable. Titles then rely on the names embedded in their details.
func (s *Service) loadGenres(ctx context.Context, log zerolog.Logger) map[int]string {
	var genres map[int]string
	err := startup.WithRetry(ctx, "load genres", s.genreRetry, func() error {
		var err error
		genres, err = s.metadata.GetGenres(ctx)
		return err
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("Genre list unavailable, using embedded genre names only")
		return map[int]string{}
	}
	return genres
}

// assembleWhenAvailable assembles d, pausing while the metadata provider's
// circuit breaker is open so that an upstream outage is not counted against
// the titles that happen to be processed during it.
func (s *Service) assembleWhenAvailable(ctx context.Context, d watchmode.Title, genres map[int]string, log zerolog.Logger) (*catalog.Title, error) {
	var title *catalog.Title
	err := startup.WithRetry(ctx, "assemble title", s.providerRetry, func() error {
		var err error
		title, err = s.assemble(ctx, d, genres)
		return err
	}, log.With().Int("watchmodeId", d.ID).Logger())
	return title, err
}

func providerUnavailable(err error) bool {
	return errors.Is(err, circuitbreaker.ErrOpen)
}

// assemble builds the canonical record for one discovered title.
func (s *Service) assemble(ctx context.Context, d watchmode.Title, genres map[int]string) (*catalog.Title, error) {
	contentType, ok := catalog.ParseContentType(d.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported content type %q", d.Type)
	}

	isMovie := d.IsMovie()
	details, err := s.metadata.GetTitleDetails(ctx, d.TmdbID, isMovie)
	if err != nil {
		return nil, err
	}

	bundle := details.Bundle(genres)
	r, tier := s.resolver.ResolveTier(bundle, isMovie)
	metrics.RecordResolution(tier.String(), string(r))

	name := details.DisplayTitle()
	if name == "" {
		name = d.Title
	}
	year := details.Year()
	if year == 0 {
		year = d.Year
	}

	return &catalog.Title{
		ExternalID:  strconv.Itoa(d.ID),
		Title:       name,
		Synopsis:    details.Overview,
		PosterURL:   s.metadata.GetImageURL(details.PosterPath, tmdb.PosterSize),
		ReleaseYear: year,
		Rating:      r,
		Language:    rating.MapLanguage(details.OriginalLanguage),
		ContentType: contentType,
		Genres:      bundle.Genres,
		Cast:        details.CastNames(s.cfg.CastLimit),
	}, nil
}

func (s *Service) markFailed(ctx context.Context, cause error, log zerolog.Logger) {
	log.Error().Err(cause).Msg("Catalog refresh failed")

	state, err := s.store.GetRefreshState(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load refresh state")
		return
	}
	if state.Status != catalog.StatusUpdating {
		return
	}
	if err := s.store.SetRefreshStatus(ctx, catalog.StatusFailed, cause.Error()); err != nil {
		log.Error().Err(err).Msg("Failed to mark refresh as failed")
	}
}

// TriggerRefresh starts a refresh in the background and returns immediately.
func (s *Service) TriggerRefresh() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Refresh(s.ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) {
			s.logger.Error().Err(err).Msg("Triggered refresh failed")
		}
	}()
}

// RefreshIfStale refreshes when the region has never been refreshed, is still
// pending, or was last updated longer ago than the freshness window. It
// reports whether a refresh ran.
func (s *Service) RefreshIfStale(ctx context.Context) (bool, error) {
	state, created, err := s.store.EnsureRefreshState(ctx)
	if err != nil {
		return false, err
	}

	if !created && !s.isStale(state, s.now()) {
		s.logger.Debug().Str("status", string(state.Status)).Time("lastUpdated", state.LastUpdated).Msg("Catalog does not need a refresh")
		return false, nil
	}

	_, err = s.Refresh(ctx)
	if errors.Is(err, ErrRefreshInProgress) {
		return false, nil
	}
	return true, err
}

// isStale reports whether state calls for a refresh. A row stuck in updating
// without a live lease belongs to a crashed run and is stale at once.
func (s *Service) isStale(state *catalog.RefreshState, now time.Time) bool {
	switch state.Status {
	case catalog.StatusPending:
		return true
	case catalog.StatusUpdating:
		return !state.LeaseHeld(now)
	}
	return now.Sub(state.LastUpdated) >= s.cfg.FreshnessWindow
}

// Shutdown cancels background runs and waits for them to finish or ctx to
// expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) broadcast(msgType string, payload any) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Broadcast(msgType, payload); err != nil {
		s.logger.Debug().Err(err).Str("event", msgType).Msg("Broadcast failed")
	}
}
