package watchmode

// ListTitlesResponse is one page from /list-titles.
type ListTitlesResponse struct {
	Titles       []Title `json:"titles"`
	Page         int     `json:"page"`
	TotalResults int     `json:"total_results"`
	TotalPages   int     `json:"total_pages"`
}

// Title is a discovered title as returned by /list-titles.
type Title struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Year     int    `json:"year,omitempty"`
	Type     string `json:"type"`
	ImdbID   string `json:"imdb_id,omitempty"`
	TmdbID   int    `json:"tmdb_id,omitempty"`
	TmdbType string `json:"tmdb_type,omitempty"`
}

// IsMovie reports whether the title resolves against the film endpoint.
// TV films are treated as films; an empty type is assumed to be a film.
func (t Title) IsMovie() bool {
	return isMovieType(t.Type)
}

// TitleDetails is the subset of /title/{id}/details used for reverse lookups.
type TitleDetails struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Year     int    `json:"year,omitempty"`
	ImdbID   string `json:"imdb_id,omitempty"`
	TmdbID   int    `json:"tmdb_id,omitempty"`
	TmdbType string `json:"tmdb_type,omitempty"`
}

// IsMovie reports whether the TMDB id refers to a film. tmdb_type is
// authoritative when present.
func (d TitleDetails) IsMovie() bool {
	switch d.TmdbType {
	case "movie":
		return true
	case "tv":
		return false
	}
	return isMovieType(d.Type)
}

// ErrorResponse is the error body returned by Watchmode.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	StatusMsg  string `json:"statusMessage"`
}

func isMovieType(t string) bool {
	return t == "" || t == "movie" || t == "tv_movie"
}
