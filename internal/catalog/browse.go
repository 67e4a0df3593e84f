package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slipstream/flixcat/internal/database/sqlc"
	"github.com/slipstream/flixcat/internal/rating"
)

const titleColumns = `id, region, generation, external_id, title, synopsis, poster_url, release_year,
	rating, language, content_type, genres, cast_members, created_at, updated_at`

// List returns one page of live titles matching opts.
func (s *Store) List(ctx context.Context, opts ListOptions) (*TitlePage, error) {
	opts.Normalize()

	page := &TitlePage{
		Titles: []Title{},
		Page:   opts.Page,
		Limit:  opts.Limit,
	}

	err := s.readLive(ctx, func(tx *sql.Tx, _ *sqlc.Queries, gen int64) error {
		f := buildFilter(s.region, gen, opts)

		countQuery := "SELECT COUNT(*) FROM titles WHERE " + f.where()
		if err := tx.QueryRowContext(ctx, countQuery, f.args...).Scan(&page.Total); err != nil {
			return fmt.Errorf("failed to count titles: %w", err)
		}
		page.TotalPages = (page.Total + opts.Limit - 1) / opts.Limit

		if page.Total == 0 || opts.Offset() >= page.Total {
			return nil
		}

		query := "SELECT " + titleColumns + " FROM titles WHERE " + f.where() +
			" ORDER BY " + orderClauses[opts.Sort] + " LIMIT ? OFFSET ?"
		args := append(append([]any{}, f.args...), opts.Limit, opts.Offset())

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTitle(rows)
			if err != nil {
				return fmt.Errorf("failed to scan title: %w", err)
			}
			page.Titles = append(page.Titles, t)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// Stats aggregates the live catalog by rating, language, genre and type.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByRating:      make(map[string]int),
		ByLanguage:    make(map[string]int),
		ByGenre:       make(map[string]int),
		ByContentType: make(map[string]int),
	}

	groups := []struct {
		query string
		into  map[string]int
	}{
		{"SELECT COALESCE(rating, ''), COUNT(*) FROM titles WHERE region = ? AND generation = ? GROUP BY rating", stats.ByRating},
		{"SELECT language, COUNT(*) FROM titles WHERE region = ? AND generation = ? GROUP BY language", stats.ByLanguage},
		{"SELECT content_type, COUNT(*) FROM titles WHERE region = ? AND generation = ? GROUP BY content_type", stats.ByContentType},
		{"SELECT g.value, COUNT(*) FROM titles, json_each(titles.genres) g WHERE titles.region = ? AND titles.generation = ? GROUP BY g.value", stats.ByGenre},
	}

	err := s.readLive(ctx, func(tx *sql.Tx, _ *sqlc.Queries, gen int64) error {
		for _, g := range groups {
			if err := s.countInto(ctx, tx, g.query, gen, g.into); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, n := range stats.ByContentType {
		stats.Total += n
	}
	return stats, nil
}

func (s *Store) countInto(ctx context.Context, tx *sql.Tx, query string, gen int64, into map[string]int) error {
	rows, err := tx.QueryContext(ctx, query, s.region, gen)
	if err != nil {
		return fmt.Errorf("failed to aggregate titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan aggregate: %w", err)
		}
		if key == "" {
			key = "unrated"
		}
		into[key] = n
	}
	return rows.Err()
}

// Options describes the closed value sets a client can filter and sort by.
type Options struct {
	Ratings      []RatingOption `json:"ratings"`
	Languages    []string       `json:"languages"`
	ContentTypes []ContentType  `json:"contentTypes"`
	SortKeys     []SortKey      `json:"sortKeys"`
}

// RatingOption is a rating and its audience description.
type RatingOption struct {
	Value       rating.Rating `json:"value"`
	Description string        `json:"description"`
}

// FilterOptions returns the accepted filter and sort values.
func FilterOptions() Options {
	ratings := make([]RatingOption, 0, len(rating.All))
	for _, r := range rating.All {
		ratings = append(ratings, RatingOption{Value: r, Description: r.Description()})
	}
	return Options{
		Ratings:      ratings,
		Languages:    rating.Languages(),
		ContentTypes: ContentTypes,
		SortKeys:     SortKeys,
	}
}

func scanTitle(rows *sql.Rows) (Title, error) {
	var i sqlc.Title
	err := rows.Scan(
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
	if err != nil {
		return Title{}, err
	}
	return titleFromRow(i), nil
}
