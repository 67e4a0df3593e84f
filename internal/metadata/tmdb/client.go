package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/circuitbreaker"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metrics"
	"github.com/slipstream/flixcat/internal/ratelimit"
)

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrNotFound      = errors.New("title not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
)

// PosterSize is the image size used for catalog posters.
const PosterSize = "w500"

const (
	movieAppend = "credits,release_dates"
	tvAppend    = "credits,content_ratings"
)

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.Breaker
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config: cfg,
		limiter: ratelimit.NewLimiter("tmdb", ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}, logger),
		breaker: circuitbreaker.New("tmdb", circuitbreaker.Settings{
			ConsecutiveFailures: uint32(cfg.CircuitBreaker.ConsecutiveFailures),
			Timeout:             cfg.CircuitBreaker.Timeout,
			Ignore:              func(err error) bool { return errors.Is(err, ErrNotFound) },
		}, logger),
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Test verifies connectivity to the TMDB API by making a configuration request.
func (c *Client) Test(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrAPIKeyMissing
	}

	var result struct {
		Images struct {
			BaseURL string `json:"base_url"`
		} `json:"images"`
	}
	return c.doRequest(ctx, c.config.BaseURL+"/configuration", c.params(), &result)
}

// GetTitleDetails fetches a title with credits and certifications appended.
// Films use /movie/{id} with release_dates; series use /tv/{id} with
// content_ratings.
func (c *Client) GetTitleDetails(ctx context.Context, id int, isMovie bool) (*TitleDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	kind, appendTo := "tv", tvAppend
	if isMovie {
		kind, appendTo = "movie", movieAppend
	}

	endpoint := fmt.Sprintf("%s/%s/%d", c.config.BaseURL, kind, id)
	params := c.params()
	params.Set("append_to_response", appendTo)

	var details TitleDetails
	if err := c.doRequest(ctx, endpoint, params, &details); err != nil {
		return nil, err
	}

	c.logger.Trace().
		Int("tmdbId", id).
		Str("kind", kind).
		Str("title", details.DisplayTitle()).
		Msg("Got title details")

	return &details, nil
}

// GetGenres returns the genre id to name map merged from the movie and TV
// taxonomies. Movie names win when both define the same id.
func (c *Client) GetGenres(ctx context.Context) (map[int]string, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	genres := make(map[int]string)
	for _, kind := range []string{"tv", "movie"} {
		var resp GenreListResponse
		endpoint := fmt.Sprintf("%s/genre/%s/list", c.config.BaseURL, kind)
		if err := c.doRequest(ctx, endpoint, c.params(), &resp); err != nil {
			return nil, fmt.Errorf("failed to load %s genres: %w", kind, err)
		}
		for _, g := range resp.Genres {
			genres[g.ID] = g.Name
		}
	}

	c.logger.Debug().Int("count", len(genres)).Msg("Loaded genre list")
	return genres, nil
}

// GetImageURL returns the full URL for an image path at the given size.
func (c *Client) GetImageURL(path string, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.config.ImageBaseURL, size, path)
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	return params
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	return c.breaker.Do(func() error {
		return c.fetch(ctx, endpoint, params, result)
	})
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderRequest("tmdb", 0, time.Since(start))
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest("tmdb", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Str("url", endpoint).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
