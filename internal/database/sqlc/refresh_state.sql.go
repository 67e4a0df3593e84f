// Queries from internal/database/queries/refresh_state.sql.

package sqlc

import (
	"context"
	"database/sql"
	"time"
)

const acquireRefreshLease = `-- name: AcquireRefreshLease :execrows
UPDATE refresh_state SET
    lease_holder = ?1,
    lease_expires_at = ?2
WHERE id = ?3
  AND (lease_holder IS NULL
    OR lease_holder = ?1
    OR lease_expires_at IS NULL
    OR lease_expires_at < ?4)
`

type AcquireRefreshLeaseParams struct {
	Holder    sql.NullString `json:"holder"`
	ExpiresAt sql.NullTime   `json:"expires_at"`
	ID        int64          `json:"id"`
	Now       sql.NullTime   `json:"now"`
}

func (q *Queries) AcquireRefreshLease(ctx context.Context, arg AcquireRefreshLeaseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, acquireRefreshLease,
		arg.Holder,
		arg.ExpiresAt,
		arg.ID,
		arg.Now,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createRefreshState = `-- name: CreateRefreshState :one
INSERT INTO refresh_state (region, status, last_updated, is_active)
VALUES (?, ?, ?, 1)
RETURNING id, region, status, total_titles, current_generation, last_updated, is_active, lease_holder, lease_expires_at, last_error
`

type CreateRefreshStateParams struct {
	Region      string    `json:"region"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

func (q *Queries) CreateRefreshState(ctx context.Context, arg CreateRefreshStateParams) (RefreshState, error) {
	row := q.db.QueryRowContext(ctx, createRefreshState, arg.Region, arg.Status, arg.LastUpdated)
	var i RefreshState
	err := row.Scan(
		&i.ID,
		&i.Region,
		&i.Status,
		&i.TotalTitles,
		&i.CurrentGeneration,
		&i.LastUpdated,
		&i.IsActive,
		&i.LeaseHolder,
		&i.LeaseExpiresAt,
		&i.LastError,
	)
	return i, err
}

const getActiveRefreshState = `-- name: GetActiveRefreshState :one
SELECT id, region, status, total_titles, current_generation, last_updated, is_active, lease_holder, lease_expires_at, last_error FROM refresh_state WHERE region = ? AND is_active = 1
`

func (q *Queries) GetActiveRefreshState(ctx context.Context, region string) (RefreshState, error) {
	row := q.db.QueryRowContext(ctx, getActiveRefreshState, region)
	var i RefreshState
	err := row.Scan(
		&i.ID,
		&i.Region,
		&i.Status,
		&i.TotalTitles,
		&i.CurrentGeneration,
		&i.LastUpdated,
		&i.IsActive,
		&i.LeaseHolder,
		&i.LeaseExpiresAt,
		&i.LastError,
	)
	return i, err
}

const promoteGeneration = `-- name: PromoteGeneration :exec
UPDATE refresh_state SET
    current_generation = ?,
    total_titles = ?
WHERE id = ?
`

type PromoteGenerationParams struct {
	CurrentGeneration int64 `json:"current_generation"`
	TotalTitles       int64 `json:"total_titles"`
	ID                int64 `json:"id"`
}

func (q *Queries) PromoteGeneration(ctx context.Context, arg PromoteGenerationParams) error {
	_, err := q.db.ExecContext(ctx, promoteGeneration, arg.CurrentGeneration, arg.TotalTitles, arg.ID)
	return err
}

const releaseRefreshLease = `-- name: ReleaseRefreshLease :exec
UPDATE refresh_state SET
    lease_holder = NULL,
    lease_expires_at = NULL
WHERE id = ? AND lease_holder = ?
`

type ReleaseRefreshLeaseParams struct {
	ID          int64          `json:"id"`
	LeaseHolder sql.NullString `json:"lease_holder"`
}

func (q *Queries) ReleaseRefreshLease(ctx context.Context, arg ReleaseRefreshLeaseParams) error {
	_, err := q.db.ExecContext(ctx, releaseRefreshLease, arg.ID, arg.LeaseHolder)
	return err
}

const renewRefreshLease = `-- name: RenewRefreshLease :execrows
UPDATE refresh_state SET
    lease_expires_at = ?
WHERE id = ? AND lease_holder = ?
`

type RenewRefreshLeaseParams struct {
	LeaseExpiresAt sql.NullTime   `json:"lease_expires_at"`
	ID             int64          `json:"id"`
	LeaseHolder    sql.NullString `json:"lease_holder"`
}

func (q *Queries) RenewRefreshLease(ctx context.Context, arg RenewRefreshLeaseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, renewRefreshLease, arg.LeaseExpiresAt, arg.ID, arg.LeaseHolder)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateRefreshStatus = `-- name: UpdateRefreshStatus :exec
UPDATE refresh_state SET
    status = ?,
    last_error = ?,
    last_updated = ?
WHERE id = ?
`

type UpdateRefreshStatusParams struct {
	Status      string         `json:"status"`
	LastError   sql.NullString `json:"last_error"`
	LastUpdated time.Time      `json:"last_updated"`
	ID          int64          `json:"id"`
}

func (q *Queries) UpdateRefreshStatus(ctx context.Context, arg UpdateRefreshStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateRefreshStatus,
		arg.Status,
		arg.LastError,
		arg.LastUpdated,
		arg.ID,
	)
	return err
}
