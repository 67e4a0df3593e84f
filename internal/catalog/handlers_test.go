package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestEcho(t *testing.T) (*echo.Echo, *Store) {
	t.Helper()
	store := seedBrowseCatalog(t)
	e := echo.New()
	NewHandlers(store).RegisterRoutes(e.Group("/api/v1"))
	return e, store
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlers_List(t *testing.T) {
	e, _ := newTestEcho(t)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"no filters", "/api/v1/titles", 6},
		{"repeated rating", "/api/v1/titles?bbfcRatings=12&bbfcRatings=18", 3},
		{"comma separated ratings", "/api/v1/titles?bbfcRatings=12,18", 3},
		{"rating alias", "/api/v1/titles?rating=PG", 1},
		{"language and type", "/api/v1/titles?languages=English&contentTypes=tv_series", 2},
		{"genre synonym", "/api/v1/titles?genres=Sci-Fi", 2},
		{"search", "/api/v1/titles?search=laugh", 1},
		{"paged", "/api/v1/titles?limit=2&page=3", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(e, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
			}

			var page TitlePage
			if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(page.Titles) != tt.want {
				t.Errorf("got %d titles, want %d", len(page.Titles), tt.want)
			}
		})
	}
}

func TestHandlers_List_InvalidPagingIsClamped(t *testing.T) {
	e, _ := newTestEcho(t)

	rec := doGet(e, "/api/v1/titles?page=abc&limit=-5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var page TitlePage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 1 || page.Limit != DefaultPageSize {
		t.Errorf("page=%d limit=%d, want 1 and %d", page.Page, page.Limit, DefaultPageSize)
	}
}

func TestHandlers_Get(t *testing.T) {
	e, store := newTestEcho(t)

	page, err := store.List(t.Context(), ListOptions{Search: "Laugh"})
	if err != nil || len(page.Titles) != 1 {
		t.Fatalf("seed lookup failed: %v", err)
	}
	id := page.Titles[0].ID

	rec := doGet(e, "/api/v1/titles/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["bbfcRating"] != "12" {
		t.Errorf("bbfcRating = %v, want 12", body["bbfcRating"])
	}
	if body["language"] != "Spanish" {
		t.Errorf("language = %v, want Spanish", body["language"])
	}
	if _, ok := body["generation"]; ok {
		t.Error("generation should not be serialized")
	}

	rec = doGet(e, "/api/v1/titles/does-not-exist")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing title status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandlers_UnratedTitleOmitsRating(t *testing.T) {
	e, store := newTestEcho(t)

	page, err := store.List(t.Context(), ListOptions{Search: "Untitled"})
	if err != nil || len(page.Titles) != 1 {
		t.Fatalf("seed lookup failed: %v", err)
	}

	rec := doGet(e, "/api/v1/titles/"+page.Titles[0].ID)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["bbfcRating"]; ok {
		t.Errorf("bbfcRating present for unrated title: %v", body["bbfcRating"])
	}
}

func TestHandlers_Stats(t *testing.T) {
	e, _ := newTestEcho(t)

	rec := doGet(e, "/api/v1/titles/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Total != 6 {
		t.Errorf("Total = %d, want 6", stats.Total)
	}
}

func TestHandlers_Options(t *testing.T) {
	e, _ := newTestEcho(t)

	rec := doGet(e, "/api/v1/catalog/options")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var opts Options
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(opts.Ratings) != 5 {
		t.Errorf("ratings = %d, want 5", len(opts.Ratings))
	}
	if len(opts.ContentTypes) != len(ContentTypes) {
		t.Errorf("content types = %d, want %d", len(opts.ContentTypes), len(ContentTypes))
	}
	if len(opts.SortKeys) != len(SortKeys) {
		t.Errorf("sort keys = %d, want %d", len(opts.SortKeys), len(SortKeys))
	}
}
