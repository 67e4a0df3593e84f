package metadata

import (
	"context"

	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
)

// DiscoveryClient lists the titles a streaming source carries in a region.
type DiscoveryClient interface {
	Name() string
	IsConfigured() bool
	ListTitles(ctx context.Context) ([]watchmode.Title, error)
	GetTitle(ctx context.Context, id string) (*watchmode.TitleDetails, error)
}

// DetailsClient fetches descriptive metadata and certifications.
type DetailsClient interface {
	Name() string
	IsConfigured() bool
	Test(ctx context.Context) error
	GetTitleDetails(ctx context.Context, id int, isMovie bool) (*tmdb.TitleDetails, error)
	GetGenres(ctx context.Context) (map[int]string, error)
	GetImageURL(path string, size string) string
}
