// Queries from internal/database/queries/titles.sql.

package sqlc

import (
	"context"
	"database/sql"
	"time"
)

const countTitles = `-- name: CountTitles :one
SELECT COUNT(*) FROM titles WHERE region = ? AND generation = ?
`

type CountTitlesParams struct {
	Region     string `json:"region"`
	Generation int64  `json:"generation"`
}

func (q *Queries) CountTitles(ctx context.Context, arg CountTitlesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTitles, arg.Region, arg.Generation)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTitle = `-- name: CreateTitle :execrows
INSERT INTO titles (
    id, region, generation, external_id, title, synopsis, poster_url, release_year,
    rating, language, content_type, genres, cast_members, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (region, generation, external_id) DO NOTHING
`

type CreateTitleParams struct {
	ID          string         `json:"id"`
	Region      string         `json:"region"`
	Generation  int64          `json:"generation"`
	ExternalID  string         `json:"external_id"`
	Title       string         `json:"title"`
	Synopsis    sql.NullString `json:"synopsis"`
	PosterUrl   sql.NullString `json:"poster_url"`
	ReleaseYear sql.NullInt64  `json:"release_year"`
	Rating      sql.NullString `json:"rating"`
	Language    string         `json:"language"`
	ContentType string         `json:"content_type"`
	Genres      string         `json:"genres"`
	CastMembers string         `json:"cast_members"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (q *Queries) CreateTitle(ctx context.Context, arg CreateTitleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createTitle,
		arg.ID,
		arg.Region,
		arg.Generation,
		arg.ExternalID,
		arg.Title,
		arg.Synopsis,
		arg.PosterUrl,
		arg.ReleaseYear,
		arg.Rating,
		arg.Language,
		arg.ContentType,
		arg.Genres,
		arg.CastMembers,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteStaleGenerations = `-- name: DeleteStaleGenerations :execrows
DELETE FROM titles WHERE region = ? AND generation <> ?
`

type DeleteStaleGenerationsParams struct {
	Region     string `json:"region"`
	Generation int64  `json:"generation"`
}

func (q *Queries) DeleteStaleGenerations(ctx context.Context, arg DeleteStaleGenerationsParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleGenerations, arg.Region, arg.Generation)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getTitle = `-- name: GetTitle :one
SELECT id, region, generation, external_id, title, synopsis, poster_url, release_year, rating, language, content_type, genres, cast_members, created_at, updated_at FROM titles WHERE id = ? AND region = ? AND generation = ?
`

type GetTitleParams struct {
	ID         string `json:"id"`
	Region     string `json:"region"`
	Generation int64  `json:"generation"`
}

func (q *Queries) GetTitle(ctx context.Context, arg GetTitleParams) (Title, error) {
	row := q.db.QueryRowContext(ctx, getTitle, arg.ID, arg.Region, arg.Generation)
	var i Title
	err := row.Scan(
		&i.ID,
		&i.Region,
		&i.Generation,
		&i.ExternalID,
		&i.Title,
		&i.Synopsis,
		&i.PosterUrl,
		&i.ReleaseYear,
		&i.Rating,
		&i.Language,
		&i.ContentType,
		&i.Genres,
		&i.CastMembers,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTitlesByRating = `-- name: ListTitlesByRating :many
SELECT id, region, generation, external_id, title, synopsis, poster_url, release_year, rating, language, content_type, genres, cast_members, created_at, updated_at FROM titles
WHERE region = ? AND generation = ? AND rating = ?
ORDER BY title, id
`

type ListTitlesByRatingParams struct {
	Region     string         `json:"region"`
	Generation int64          `json:"generation"`
	Rating     sql.NullString `json:"rating"`
}

func (q *Queries) ListTitlesByRating(ctx context.Context, arg ListTitlesByRatingParams) ([]Title, error) {
	rows, err := q.db.QueryContext(ctx, listTitlesByRating, arg.Region, arg.Generation, arg.Rating)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Title{}
	for rows.Next() {
		var i Title
		if err := rows.Scan(
			&i.ID,
			&i.Region,
			&i.Generation,
			&i.ExternalID,
			&i.Title,
			&i.Synopsis,
			&i.PosterUrl,
			&i.ReleaseYear,
			&i.Rating,
			&i.Language,
			&i.ContentType,
			&i.Genres,
			&i.CastMembers,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTitleRating = `-- name: UpdateTitleRating :execrows
UPDATE titles SET
    rating = ?,
    updated_at = ?
WHERE id = ?
`

type UpdateTitleRatingParams struct {
	Rating    sql.NullString `json:"rating"`
	UpdatedAt time.Time      `json:"updated_at"`
	ID        string         `json:"id"`
}

func (q *Queries) UpdateTitleRating(ctx context.Context, arg UpdateTitleRatingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTitleRating, arg.Rating, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
