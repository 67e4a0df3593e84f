package mock

import (
	"context"
	"strconv"
	"testing"

	"github.com/slipstream/flixcat/internal/metadata/tmdb"
	"github.com/slipstream/flixcat/internal/metadata/watchmode"
)

func TestFixturesResolve(t *testing.T) {
	ctx := context.Background()
	discovery := NewWatchmodeClient(nil)
	details := NewTMDBClient(nil)

	titles, err := discovery.ListTitles(ctx)
	if err != nil {
		t.Fatalf("ListTitles() error = %v", err)
	}
	if len(titles) != len(DefaultFixtures) {
		t.Fatalf("ListTitles() = %d titles, want %d", len(titles), len(DefaultFixtures))
	}

	for _, title := range titles {
		if title.TmdbID == 0 {
			continue
		}
		d, err := details.GetTitleDetails(ctx, title.TmdbID, title.IsMovie())
		if err != nil {
			t.Errorf("%s: GetTitleDetails() error = %v", title.Title, err)
			continue
		}
		if d.DisplayTitle() == "" {
			t.Errorf("%s: empty display title", title.Title)
		}

		rev, err := discovery.GetTitle(ctx, strconv.Itoa(title.ID))
		if err != nil {
			t.Errorf("%s: GetTitle() error = %v", title.Title, err)
			continue
		}
		if rev.TmdbID != title.TmdbID || rev.IsMovie() != title.IsMovie() {
			t.Errorf("%s: reverse lookup mismatch", title.Title)
		}
	}
}

func TestTMDBClient_WrongKindIsNotFound(t *testing.T) {
	details := NewTMDBClient(nil)
	// Stranger Things is a series
	if _, err := details.GetTitleDetails(context.Background(), 66732, true); err != tmdb.ErrNotFound {
		t.Errorf("GetTitleDetails() error = %v, want %v", err, tmdb.ErrNotFound)
	}
}

func TestWatchmodeClient_UnknownTitle(t *testing.T) {
	discovery := NewWatchmodeClient(nil)
	if _, err := discovery.GetTitle(context.Background(), "0"); err != watchmode.ErrNotFound {
		t.Errorf("GetTitle() error = %v, want %v", err, watchmode.ErrNotFound)
	}
}

func TestClients_RespectCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewWatchmodeClient(nil).ListTitles(ctx); err == nil {
		t.Error("ListTitles() on cancelled context should fail")
	}
	if _, err := NewTMDBClient(nil).GetTitleDetails(ctx, 66732, false); err == nil {
		t.Error("GetTitleDetails() on cancelled context should fail")
	}
}
