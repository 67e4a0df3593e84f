// Package catalog stores the regional title catalog and serves it over HTTP.
package catalog

import (
	"time"

	"github.com/slipstream/flixcat/internal/rating"
)

// ContentType classifies a title the way the discovery provider does.
type ContentType string

const (
	ContentTypeMovie      ContentType = "movie"
	ContentTypeSeries     ContentType = "tv_series"
	ContentTypeMiniseries ContentType = "tv_miniseries"
	ContentTypeTVMovie    ContentType = "tv_movie"
	ContentTypeTVSpecial  ContentType = "tv_special"
)

// ContentTypes lists every accepted content type.
var ContentTypes = []ContentType{
	ContentTypeMovie,
	ContentTypeSeries,
	ContentTypeMiniseries,
	ContentTypeTVMovie,
	ContentTypeTVSpecial,
}

// Valid reports whether c is one of ContentTypes.
func (c ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// ParseContentType maps a provider type string onto a ContentType. An empty
// string is treated as a film; anything unrecognised reports false.
func ParseContentType(s string) (ContentType, bool) {
	if s == "" {
		return ContentTypeMovie, true
	}
	ct := ContentType(s)
	return ct, ct.Valid()
}

// Title is a catalog entry.
type Title struct {
	ID          string        `json:"id"`
	Region      string        `json:"region"`
	Generation  int64         `json:"-"`
	ExternalID  string        `json:"externalId"`
	Title       string        `json:"title"`
	Synopsis    string        `json:"synopsis,omitempty"`
	PosterURL   string        `json:"posterUrl,omitempty"`
	ReleaseYear int           `json:"releaseYear,omitempty"`
	Rating      rating.Rating `json:"bbfcRating,omitempty"`
	Language    string        `json:"language"`
	ContentType ContentType   `json:"contentType"`
	Genres      []string      `json:"genres"`
	Cast        []string      `json:"cast"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Validate checks the closed-set fields before a title is written.
func (t *Title) Validate() error {
	if t.ExternalID == "" {
		return errInvalid("external id is required")
	}
	if t.Title == "" {
		return errInvalid("title is required")
	}
	if t.Rating != "" && !t.Rating.Valid() {
		return errInvalid("unknown rating " + string(t.Rating))
	}
	if !t.ContentType.Valid() {
		return errInvalid("unknown content type " + string(t.ContentType))
	}
	return nil
}

// RefreshStatus is the lifecycle state of a region's catalog.
type RefreshStatus string

const (
	StatusPending   RefreshStatus = "pending"
	StatusUpdating  RefreshStatus = "updating"
	StatusCompleted RefreshStatus = "completed"
	StatusFailed    RefreshStatus = "failed"
)

var refreshTransitions = map[RefreshStatus][]RefreshStatus{
	StatusPending:   {StatusUpdating},
	StatusUpdating:  {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusUpdating},
	StatusFailed:    {StatusUpdating},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s RefreshStatus) CanTransitionTo(next RefreshStatus) bool {
	for _, allowed := range refreshTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RefreshState tracks the live snapshot and refresh progress for a region.
type RefreshState struct {
	ID                int64         `json:"id"`
	Region            string        `json:"region"`
	Status            RefreshStatus `json:"status"`
	TotalTitles       int           `json:"totalTitles"`
	CurrentGeneration int64         `json:"currentGeneration"`
	LastUpdated       time.Time     `json:"lastUpdated"`
	IsActive          bool          `json:"isActive"`
	LeaseHolder       string        `json:"leaseHolder,omitempty"`
	LeaseExpiresAt    *time.Time    `json:"leaseExpiresAt,omitempty"`
	LastError         string        `json:"lastError,omitempty"`
}

// LeaseHeld reports whether an unexpired lease exists at now.
func (s *RefreshState) LeaseHeld(now time.Time) bool {
	return s.LeaseHolder != "" && s.LeaseExpiresAt != nil && s.LeaseExpiresAt.After(now)
}

// SnapshotResult describes a promoted snapshot.
type SnapshotResult struct {
	Generation int64 `json:"generation"`
	Inserted   int   `json:"inserted"`
	Skipped    int   `json:"skipped"`
	Removed    int64 `json:"removed"`
}
