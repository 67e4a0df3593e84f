package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/database/sqlc"
	"github.com/slipstream/flixcat/internal/rating"
)

// Store persists one region's catalog and its refresh state.
type Store struct {
	db      *sql.DB
	queries *sqlc.Queries
	region  string
	now     func() time.Time
	logger  zerolog.Logger
}

// NewStore creates a store scoped to region.
func NewStore(db *sql.DB, region string, logger zerolog.Logger) *Store {
	return &Store{
		db:      db,
		queries: sqlc.New(db),
		region:  region,
		now:     time.Now,
		logger:  logger.With().Str("component", "catalog").Str("region", region).Logger(),
	}
}

// clock returns the current time in UTC truncated to seconds so that stored
// timestamps compare correctly as text.
func (s *Store) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// GetRefreshState returns the active refresh state row.
func (s *Store) GetRefreshState(ctx context.Context) (*RefreshState, error) {
	row, err := s.queries.GetActiveRefreshState(ctx, s.region)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get refresh state: %w", err)
	}
	return stateFromRow(row), nil
}

// EnsureRefreshState returns the active row, creating it as pending when the
// region has never been refreshed. created reports whether a row was inserted.
func (s *Store) EnsureRefreshState(ctx context.Context) (state *RefreshState, created bool, err error) {
	state, err = s.GetRefreshState(ctx)
	if err == nil {
		return state, false, nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		return nil, false, err
	}

	row, err := s.queries.CreateRefreshState(ctx, sqlc.CreateRefreshStateParams{
		Region:      s.region,
		Status:      string(StatusPending),
		LastUpdated: s.clock(),
	})
	if err != nil {
		// Another process may have created it first; the partial unique index
		// guarantees there is exactly one.
		if state, getErr := s.GetRefreshState(ctx); getErr == nil {
			return state, false, nil
		}
		return nil, false, fmt.Errorf("failed to create refresh state: %w", err)
	}

	s.logger.Info().Msg("Created refresh state")
	return stateFromRow(row), true, nil
}

// SetRefreshStatus moves the active row to status. Illegal transitions are
// rejected with ErrInvalidTransition.
func (s *Store) SetRefreshStatus(ctx context.Context, status RefreshStatus, lastError string) error {
	state, err := s.GetRefreshState(ctx)
	if err != nil {
		return err
	}
	if !state.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, state.Status, status)
	}

	err = s.queries.UpdateRefreshStatus(ctx, sqlc.UpdateRefreshStatusParams{
		Status:      string(status),
		LastError:   sql.NullString{String: lastError, Valid: lastError != ""},
		LastUpdated: s.clock(),
		ID:          state.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to update refresh status: %w", err)
	}

	s.logger.Debug().Str("from", string(state.Status)).Str("to", string(status)).Msg("Refresh status changed")
	return nil
}

// AcquireLease takes the refresh lease for holder if nobody else holds an
// unexpired one. The active state row is created if needed.
func (s *Store) AcquireLease(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	state, _, err := s.EnsureRefreshState(ctx)
	if err != nil {
		return false, err
	}

	now := s.clock()
	n, err := s.queries.AcquireRefreshLease(ctx, sqlc.AcquireRefreshLeaseParams{
		Holder:    sql.NullString{String: holder, Valid: true},
		ExpiresAt: sql.NullTime{Time: now.Add(ttl), Valid: true},
		ID:        state.ID,
		Now:       sql.NullTime{Time: now, Valid: true},
	})
	if err != nil {
		return false, fmt.Errorf("failed to acquire refresh lease: %w", err)
	}
	return n == 1, nil
}

// RenewLease extends the lease held by holder.
func (s *Store) RenewLease(ctx context.Context, holder string, ttl time.Duration) error {
	state, err := s.GetRefreshState(ctx)
	if err != nil {
		return err
	}

	n, err := s.queries.RenewRefreshLease(ctx, sqlc.RenewRefreshLeaseParams{
		LeaseExpiresAt: sql.NullTime{Time: s.clock().Add(ttl), Valid: true},
		ID:             state.ID,
		LeaseHolder:    sql.NullString{String: holder, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("failed to renew refresh lease: %w", err)
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

// ReleaseLease drops the lease if holder still owns it.
func (s *Store) ReleaseLease(ctx context.Context, holder string) error {
	state, err := s.GetRefreshState(ctx)
	if err != nil {
		return err
	}

	err = s.queries.ReleaseRefreshLease(ctx, sqlc.ReleaseRefreshLeaseParams{
		ID:          state.ID,
		LeaseHolder: sql.NullString{String: holder, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("failed to release refresh lease: %w", err)
	}
	return nil
}

// ReplaceSnapshot writes titles as a new generation and promotes it in one
// transaction. Titles whose external id repeats within the snapshot are
// skipped. Readers see either the old catalog or the new one, never a mix.
// holder must still own the refresh lease, otherwise ErrLeaseLost is returned
// and nothing changes.
func (s *Store) ReplaceSnapshot(ctx context.Context, holder string, titles []Title) (*SnapshotResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queries := s.queries.WithTx(tx)

	state, err := queries.GetActiveRefreshState(ctx, s.region)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get refresh state: %w", err)
	}
	if !state.LeaseHolder.Valid || state.LeaseHolder.String != holder {
		return nil, ErrLeaseLost
	}

	result := &SnapshotResult{Generation: state.CurrentGeneration + 1}
	now := s.clock()

	for i := range titles {
		t := &titles[i]
		if err := t.Validate(); err != nil {
			return nil, err
		}

		params, err := s.createParams(t, result.Generation, now)
		if err != nil {
			return nil, err
		}

		n, err := queries.CreateTitle(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("failed to insert title %s: %w", t.ExternalID, err)
		}
		if n == 0 {
			result.Skipped++
			s.logger.Debug().Str("externalId", t.ExternalID).Str("title", t.Title).Msg("Skipped duplicate title")
			continue
		}
		result.Inserted++
	}

	if err := queries.PromoteGeneration(ctx, sqlc.PromoteGenerationParams{
		CurrentGeneration: result.Generation,
		TotalTitles:       int64(result.Inserted),
		ID:                state.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to promote generation: %w", err)
	}

	removed, err := queries.DeleteStaleGenerations(ctx, sqlc.DeleteStaleGenerationsParams{
		Region:     s.region,
		Generation: result.Generation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete stale generations: %w", err)
	}
	result.Removed = removed

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Info().
		Int64("generation", result.Generation).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int64("removed", result.Removed).
		Msg("Promoted catalog snapshot")

	return result, nil
}

// ListByRating returns every live title currently rated r.
func (s *Store) ListByRating(ctx context.Context, r rating.Rating) ([]Title, error) {
	var titles []Title
	err := s.readLive(ctx, func(_ *sql.Tx, q *sqlc.Queries, gen int64) error {
		rows, err := q.ListTitlesByRating(ctx, sqlc.ListTitlesByRatingParams{
			Region:     s.region,
			Generation: gen,
			Rating:     sql.NullString{String: string(r), Valid: true},
		})
		if err != nil {
			return fmt.Errorf("failed to list titles by rating: %w", err)
		}

		titles = make([]Title, 0, len(rows))
		for _, row := range rows {
			titles = append(titles, titleFromRow(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return titles, nil
}

// UpdateRating changes the rating of one title and touches updated_at.
func (s *Store) UpdateRating(ctx context.Context, id string, r rating.Rating) error {
	if !r.Valid() {
		return errInvalid("unknown rating " + string(r))
	}

	n, err := s.queries.UpdateTitleRating(ctx, sqlc.UpdateTitleRatingParams{
		Rating:    sql.NullString{String: string(r), Valid: true},
		UpdatedAt: s.clock(),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if n == 0 {
		return ErrTitleNotFound
	}
	return nil
}

// Get returns one live title by id.
func (s *Store) Get(ctx context.Context, id string) (*Title, error) {
	var t Title
	err := s.readLive(ctx, func(_ *sql.Tx, q *sqlc.Queries, gen int64) error {
		row, err := q.GetTitle(ctx, sqlc.GetTitleParams{ID: id, Region: s.region, Generation: gen})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTitleNotFound
			}
			return fmt.Errorf("failed to get title: %w", err)
		}
		t = titleFromRow(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Count returns the number of live titles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.readLive(ctx, func(_ *sql.Tx, q *sqlc.Queries, gen int64) error {
		var err error
		n, err = q.CountTitles(ctx, sqlc.CountTitlesParams{Region: s.region, Generation: gen})
		if err != nil {
			return fmt.Errorf("failed to count titles: %w", err)
		}
		return nil
	})
	return int(n), err
}

// readLive runs fn in one read transaction together with the lookup of the
// promoted generation, so a snapshot promoted meanwhile cannot delete the rows
// fn is reading. gen is 0 before the first snapshot (no titles carry it).
func (s *Store) readLive(ctx context.Context, fn func(tx *sql.Tx, q *sqlc.Queries, gen int64) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)

	var gen int64
	state, err := q.GetActiveRefreshState(ctx, s.region)
	switch {
	case err == nil:
		gen = state.CurrentGeneration
	case errors.Is(err, sql.ErrNoRows):
	default:
		return fmt.Errorf("failed to get refresh state: %w", err)
	}

	if err := fn(tx, q, gen); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) createParams(t *Title, generation int64, now time.Time) (sqlc.CreateTitleParams, error) {
	genres, err := json.Marshal(nonNil(t.Genres))
	if err != nil {
		return sqlc.CreateTitleParams{}, fmt.Errorf("failed to encode genres: %w", err)
	}
	cast, err := json.Marshal(nonNil(t.Cast))
	if err != nil {
		return sqlc.CreateTitleParams{}, fmt.Errorf("failed to encode cast: %w", err)
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	language := t.Language
	if language == "" {
		language = rating.UnknownLanguage
	}

	return sqlc.CreateTitleParams{
		ID:          t.ID,
		Region:      s.region,
		Generation:  generation,
		ExternalID:  t.ExternalID,
		Title:       t.Title,
		Synopsis:    sql.NullString{String: t.Synopsis, Valid: t.Synopsis != ""},
		PosterUrl:   sql.NullString{String: t.PosterURL, Valid: t.PosterURL != ""},
		ReleaseYear: sql.NullInt64{Int64: int64(t.ReleaseYear), Valid: t.ReleaseYear > 0},
		Rating:      sql.NullString{String: string(t.Rating), Valid: t.Rating != ""},
		Language:    language,
		ContentType: string(t.ContentType),
		Genres:      string(genres),
		CastMembers: string(cast),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func titleFromRow(row sqlc.Title) Title {
	t := Title{
		ID:          row.ID,
		Region:      row.Region,
		Generation:  row.Generation,
		ExternalID:  row.ExternalID,
		Title:       row.Title,
		Language:    row.Language,
		ContentType: ContentType(row.ContentType),
		Genres:      decodeList(row.Genres),
		Cast:        decodeList(row.CastMembers),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.Synopsis.Valid {
		t.Synopsis = row.Synopsis.String
	}
	if row.PosterUrl.Valid {
		t.PosterURL = row.PosterUrl.String
	}
	if row.ReleaseYear.Valid {
		t.ReleaseYear = int(row.ReleaseYear.Int64)
	}
	if row.Rating.Valid {
		t.Rating = rating.Rating(row.Rating.String)
	}
	return t
}

func stateFromRow(row sqlc.RefreshState) *RefreshState {
	state := &RefreshState{
		ID:                row.ID,
		Region:            row.Region,
		Status:            RefreshStatus(row.Status),
		TotalTitles:       int(row.TotalTitles),
		CurrentGeneration: row.CurrentGeneration,
		LastUpdated:       row.LastUpdated,
		IsActive:          row.IsActive == 1,
	}
	if row.LeaseHolder.Valid {
		state.LeaseHolder = row.LeaseHolder.String
	}
	if row.LeaseExpiresAt.Valid {
		t := row.LeaseExpiresAt.Time
		state.LeaseExpiresAt = &t
	}
	if row.LastError.Valid {
		state.LastError = row.LastError.String
	}
	return state
}

func decodeList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
