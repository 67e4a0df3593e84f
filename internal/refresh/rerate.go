package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/metrics"
	"github.com/slipstream/flixcat/internal/rating"
)

// RerateReport summarises one re-rate run.
type RerateReport struct {
	Checked    int           `json:"checked"`
	Updated    int           `json:"updated"`
	Unchanged  int           `json:"unchanged"`
	Skipped    int           `json:"skipped"`
	Duration   time.Duration `json:"duration"`
	FinishedAt time.Time     `json:"finishedAt"`
}

// LastRerate returns the report of the most recent re-rate run.
func (s *Service) LastRerate() *RerateReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRerate
}

// Rerating reports whether a re-rate run is in progress.
func (s *Service) Rerating() bool {
	return s.rerating.Load()
}

// Rerate re-resolves every live title rated 18 and lowers the ones that now
// resolve to something else. Other ratings are never revisited.
func (s *Service) Rerate(ctx context.Context) (*RerateReport, error) {
	if !s.rerating.CompareAndSwap(false, true) {
		return nil, ErrRerateInProgress
	}
	defer s.rerating.Store(false)

	start := time.Now()
	log := s.logger.With().Str("job", "rerate").Logger()

	titles, err := s.store.ListByRating(ctx, rating.Eighteen)
	if err != nil {
		return nil, err
	}

	log.Info().Int("candidates", len(titles)).Msg("Starting re-rate")
	report := &RerateReport{Checked: len(titles)}

	if len(titles) > 0 {
		genres := s.loadGenres(ctx, log)
		for _, t := range titles {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.rerateOne(ctx, t, genres, report)
		}
	}

	report.Duration = time.Since(start)
	report.FinishedAt = s.now()

	s.mu.Lock()
	s.lastRerate = report
	s.mu.Unlock()

	metrics.RecordRerate(report.Updated, report.Unchanged, report.Skipped)
	log.Info().
		Int("updated", report.Updated).
		Int("unchanged", report.Unchanged).
		Int("skipped", report.Skipped).
		Dur("duration", report.Duration).
		Msg("Re-rate completed")

	s.broadcast(EventRerateCompleted, report)
	return report, nil
}

// detailsInvalidator is implemented by caching metadata clients. Re-rating
// must see current certifications, not the ones cached during a refresh.
type detailsInvalidator interface {
	InvalidateDetails(id int, isMovie bool)
}

func (s *Service) rerateOne(ctx context.Context, t catalog.Title, genres map[int]string, report *RerateReport) {
	log := s.logger.With().Str("titleId", t.ID).Str("title", t.Title).Logger()

	source, err := s.discovery.GetTitle(ctx, t.ExternalID)
	if err != nil || source.TmdbID == 0 {
		report.Skipped++
		log.Debug().Err(err).Msg("No TMDB id for title, skipping")
		return
	}

	isMovie := source.IsMovie()
	if inv, ok := s.metadata.(detailsInvalidator); ok {
		inv.InvalidateDetails(source.TmdbID, isMovie)
	}
	details, err := s.metadata.GetTitleDetails(ctx, source.TmdbID, isMovie)
	if err != nil {
		report.Skipped++
		log.Warn().Err(err).Int("tmdbId", source.TmdbID).Msg("Failed to fetch details, skipping")
		return
	}

	r, tier := s.resolver.ResolveTier(details.Bundle(genres), isMovie)
	if r == rating.Eighteen {
		report.Unchanged++
		return
	}

	if err := s.store.UpdateRating(ctx, t.ID, r); err != nil {
		report.Skipped++
		if !errors.Is(err, catalog.ErrTitleNotFound) {
			log.Error().Err(err).Msg("Failed to update rating")
		}
		return
	}

	report.Updated++
	log.Info().Str("rating", string(r)).Str("tier", tier.String()).Msg("Lowered rating")
}

// TriggerRerate starts a re-rate run in the background and returns immediately.
func (s *Service) TriggerRerate() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Rerate(s.ctx); err != nil && !errors.Is(err, ErrRerateInProgress) {
			s.logger.Error().Err(err).Msg("Triggered re-rate failed")
		}
	}()
}
