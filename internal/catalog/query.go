package catalog

import (
	"strings"

	"github.com/slipstream/flixcat/internal/rating"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// SortKey orders a title listing.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortYearDesc  SortKey = "year-desc"
	SortYearAsc   SortKey = "year-asc"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

// SortKeys lists every accepted sort key.
var SortKeys = []SortKey{SortRelevance, SortYearDesc, SortYearAsc, SortTitleAsc, SortTitleDesc}

// ParseSort returns the sort key for s, falling back to relevance.
func ParseSort(s string) SortKey {
	for _, k := range SortKeys {
		if string(k) == s {
			return k
		}
	}
	return SortRelevance
}

// Relevance has no scoring signal, so it is newest first.
var orderClauses = map[SortKey]string{
	SortRelevance: "release_year IS NULL, release_year DESC, title COLLATE NOCASE ASC, id ASC",
	SortYearDesc:  "release_year IS NULL, release_year DESC, title COLLATE NOCASE ASC, id ASC",
	SortYearAsc:   "release_year IS NULL, release_year ASC, title COLLATE NOCASE ASC, id ASC",
	SortTitleAsc:  "title COLLATE NOCASE ASC, id ASC",
	SortTitleDesc: "title COLLATE NOCASE DESC, id ASC",
}

// ListOptions filters, sorts and pages a title listing. Empty filter slices
// match everything.
type ListOptions struct {
	Ratings      []rating.Rating
	Languages    []string
	Genres       []string
	ContentTypes []ContentType
	Search       string
	Sort         SortKey
	Page         int
	Limit        int
}

// Normalize clamps paging to valid bounds and defaults the sort key.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	o.Sort = ParseSort(string(o.Sort))
	o.Search = strings.TrimSpace(o.Search)
}

// Offset returns the row offset for the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// TitlePage is one page of a title listing.
type TitlePage struct {
	Titles     []Title `json:"titles"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// Stats aggregates the live catalog.
type Stats struct {
	Total         int            `json:"total"`
	ByRating      map[string]int `json:"byRating"`
	ByLanguage    map[string]int `json:"byLanguage"`
	ByGenre       map[string]int `json:"byGenre"`
	ByContentType map[string]int `json:"byContentType"`
}

// genreSynonyms groups genre names that users treat as the same thing.
var genreSynonyms = [][]string{
	{"Sci-Fi", "Science Fiction", "Sci-Fi & Fantasy"},
}

// ExpandGenres adds the synonyms of every requested genre.
func ExpandGenres(genres []string) []string {
	seen := make(map[string]bool, len(genres))
	out := make([]string, 0, len(genres))
	add := func(g string) {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}

	for _, g := range genres {
		add(g)
		for _, group := range genreSynonyms {
			if containsFold(group, g) {
				for _, syn := range group {
					add(syn)
				}
			}
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// filter accumulates a WHERE clause and its arguments.
type filter struct {
	clauses []string
	args    []any
}

func (f *filter) add(clause string, args ...any) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

func (f *filter) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	f.add(column+" IN ("+placeholders(len(values))+")", args...)
}

func (f *filter) where() string {
	return strings.Join(f.clauses, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// buildFilter translates opts into a WHERE clause over the titles table.
func buildFilter(region string, generation int64, opts ListOptions) *filter {
	f := &filter{}
	f.add("region = ? AND generation = ?", region, generation)

	ratings := make([]string, 0, len(opts.Ratings))
	for _, r := range opts.Ratings {
		ratings = append(ratings, string(r))
	}
	f.in("rating", ratings)
	f.in("language", opts.Languages)

	types := make([]string, 0, len(opts.ContentTypes))
	for _, ct := range opts.ContentTypes {
		types = append(types, string(ct))
	}
	f.in("content_type", types)

	if len(opts.Genres) > 0 {
		genres := ExpandGenres(opts.Genres)
		args := make([]any, len(genres))
		for i, g := range genres {
			args[i] = g
		}
		f.add("EXISTS (SELECT 1 FROM json_each(titles.genres) g WHERE g.value IN ("+placeholders(len(genres))+"))", args...)
	}

	if opts.Search != "" {
		f.add(`title LIKE ? ESCAPE '\'`, "%"+escapeLike(opts.Search)+"%")
	}

	return f
}
