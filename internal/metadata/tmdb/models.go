package tmdb

import (
	"strconv"

	"github.com/slipstream/flixcat/internal/rating"
)

// TitleDetails is the response from /movie/{id} or /tv/{id} with credits and
// certifications appended. Films fill Title, ReleaseDate and ReleaseDates;
// series fill Name, FirstAirDate and ContentRatings.
type TitleDetails struct {
	ID               int                     `json:"id"`
	Title            string                  `json:"title,omitempty"`
	Name             string                  `json:"name,omitempty"`
	Overview         string                  `json:"overview"`
	PosterPath       string                  `json:"poster_path,omitempty"`
	ReleaseDate      string                  `json:"release_date,omitempty"`
	FirstAirDate     string                  `json:"first_air_date,omitempty"`
	Genres           []Genre                 `json:"genres"`
	GenreIDs         []int                   `json:"genre_ids,omitempty"`
	OriginalLanguage string                  `json:"original_language"`
	VoteAverage      float64                 `json:"vote_average"`
	Credits          *CreditsResponse        `json:"credits,omitempty"`
	ReleaseDates     *ReleaseDatesResponse   `json:"release_dates,omitempty"`
	ContentRatings   *ContentRatingsResponse `json:"content_ratings,omitempty"`
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the response from /genre/movie/list and /genre/tv/list.
type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

// CreditsResponse is the appended credits block.
type CreditsResponse struct {
	Cast []CastMember `json:"cast"`
}

// CastMember represents a cast member from TMDB credits.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Order     int    `json:"order"`
}

// ReleaseDatesResponse is the appended release_dates block for films.
type ReleaseDatesResponse struct {
	Results []ReleaseDatesByRegion `json:"results"`
}

// ReleaseDatesByRegion contains release dates for a specific country.
type ReleaseDatesByRegion struct {
	Iso31661     string        `json:"iso_3166_1"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// ReleaseDate represents a single dated release with its certification.
type ReleaseDate struct {
	Certification string `json:"certification"`
	ReleaseDate   string `json:"release_date"`
	Type          int    `json:"type"`
}

// ContentRatingsResponse is the appended content_ratings block for series.
type ContentRatingsResponse struct {
	Results []ContentRating `json:"results"`
}

// ContentRating is the current rating of a series in one country.
type ContentRating struct {
	Iso31661 string `json:"iso_3166_1"`
	Rating   string `json:"rating"`
}

// ErrorResponse represents an error response from TMDB.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

// DisplayTitle returns the film title or the series name.
func (d TitleDetails) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// Year returns the release or first-air year, or 0 when unknown.
func (d TitleDetails) Year() int {
	date := d.ReleaseDate
	if date == "" {
		date = d.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// GenreNames returns the deduplicated genre names. Embedded genre objects win;
// bare genre ids are resolved through lookup when no objects are present.
func (d TitleDetails) GenreNames(lookup map[int]string) []string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(d.Genres))
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	for _, g := range d.Genres {
		name := g.Name
		if name == "" {
			name = lookup[g.ID]
		}
		add(name)
	}
	if len(d.Genres) == 0 {
		for _, id := range d.GenreIDs {
			add(lookup[id])
		}
	}
	return names
}

// CastNames returns up to limit cast names in billing order.
func (d TitleDetails) CastNames(limit int) []string {
	if d.Credits == nil {
		return []string{}
	}
	names := make([]string, 0, limit)
	for _, c := range d.Credits.Cast {
		if len(names) >= limit {
			break
		}
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// Bundle converts the details into the resolver's input.
func (d TitleDetails) Bundle(lookup map[int]string) rating.Bundle {
	b := rating.Bundle{
		Genres:      d.GenreNames(lookup),
		Overview:    d.Overview,
		VoteAverage: d.VoteAverage,
	}

	if d.ReleaseDates != nil {
		for _, r := range d.ReleaseDates.Results {
			certs := make([]string, 0, len(r.ReleaseDates))
			for _, rd := range r.ReleaseDates {
				certs = append(certs, rd.Certification)
			}
			b.Releases = append(b.Releases, rating.RegionReleases{Region: r.Iso31661, Certifications: certs})
		}
	}
	if d.ContentRatings != nil {
		for _, r := range d.ContentRatings.Results {
			b.Ratings = append(b.Ratings, rating.RegionRating{Region: r.Iso31661, Rating: r.Rating})
		}
	}
	return b
}
