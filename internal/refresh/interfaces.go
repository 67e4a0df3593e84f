package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/slipstream/flixcat/internal/catalog"
	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
	"github.com/slipstream/flixcat/internal/rating"
)

var (
	ErrRefreshInProgress  = errors.New("catalog refresh already in progress")
	ErrNoTitlesDiscovered = errors.New("no titles discovered")
	ErrNoTitlesAssembled  = errors.New("no titles could be assembled")
	ErrRerateInProgress   = errors.New("re-rating already in progress")
)

// Store persists the catalog and its refresh bookkeeping.
type Store interface {
	GetRefreshState(ctx context.Context) (*catalog.RefreshState, error)
	EnsureRefreshState(ctx context.Context) (*catalog.RefreshState, bool, error)
	SetRefreshStatus(ctx context.Context, status catalog.RefreshStatus, lastError string) error
	AcquireLease(ctx context.Context, holder string, ttl time.Duration) (bool, error)
	RenewLease(ctx context.Context, holder string, ttl time.Duration) error
	ReleaseLease(ctx context.Context, holder string) error
	ReplaceSnapshot(ctx context.Context, holder string, titles []catalog.Title) (*catalog.SnapshotResult, error)
	ListByRating(ctx context.Context, r rating.Rating) ([]catalog.Title, error)
	UpdateRating(ctx context.Context, id string, r rating.Rating) error
}

// DiscoveryClient lists what the streaming source carries.
type DiscoveryClient interface {
	ListTitles(ctx context.Context) ([]watchmode.Title, error)
	GetTitle(ctx context.Context, id string) (*watchmode.TitleDetails, error)
}

// MetadataClient fetches descriptive metadata and certifications.
type MetadataClient interface {
	GetTitleDetails(ctx context.Context, id int, isMovie bool) (*tmdb.TitleDetails, error)
	GetGenres(ctx context.Context) (map[int]string, error)
	GetImageURL(path string, size string) string
}

// Broadcaster pushes events to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, payload any) error
}
