package sqlc

import (
	"database/sql"
	"time"
)

type RefreshState struct {
	ID                int64          `json:"id"`
	Region            string         `json:"region"`
	Status            string         `json:"status"`
	TotalTitles       int64          `json:"total_titles"`
	CurrentGeneration int64          `json:"current_generation"`
	LastUpdated       time.Time      `json:"last_updated"`
	IsActive          int64          `json:"is_active"`
	LeaseHolder       sql.NullString `json:"lease_holder"`
	LeaseExpiresAt    sql.NullTime   `json:"lease_expires_at"`
	LastError         sql.NullString `json:"last_error"`
}

type Title struct {
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
