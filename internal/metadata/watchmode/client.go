// Package watchmode discovers which titles a streaming source carries in a
// region using the Watchmode API.
package watchmode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/slipstream/flixcat/internal/circuitbreaker"
	"github.com/slipstream/flixcat/internal/config"
	"github.com/slipstream/flixcat/internal/metrics"
	"github.com/slipstream/flixcat/internal/ratelimit"
)

var (
	ErrAPIKeyMissing = errors.New("watchmode API key is not configured")
	ErrNotFound      = errors.New("title not found")
	ErrAPIError      = errors.New("watchmode API error")
)

// Types lists the title types requested during discovery.
const Types = "movie,tv_series,tv_miniseries,tv_movie,tv_special"

// Client is a Watchmode API client.
type Client struct {
	httpClient   *http.Client
	config       config.WatchmodeConfig
	sourceID     int
	jurisdiction string
	limiter      *ratelimit.Limiter
	breaker      *circuitbreaker.Breaker
	logger       zerolog.Logger
}

// NewClient creates a client that discovers titles of sourceID available in
// jurisdiction (an ISO 3166-1 code such as "GB").
func NewClient(cfg config.WatchmodeConfig, sourceID int, jurisdiction string, logger zerolog.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 250
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		config:       cfg,
		sourceID:     sourceID,
		jurisdiction: jurisdiction,
		limiter: ratelimit.NewLimiter("watchmode", ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}, logger),
		breaker: circuitbreaker.New("watchmode", circuitbreaker.Settings{
			ConsecutiveFailures: uint32(cfg.CircuitBreaker.ConsecutiveFailures),
			Timeout:             cfg.CircuitBreaker.Timeout,
			Ignore:              func(err error) bool { return errors.Is(err, ErrNotFound) },
		}, logger),
		logger: logger.With().Str("component", "watchmode").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "watchmode"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// ListTitles walks /list-titles page by page until a page comes back empty,
// a request fails, or MaxPages is reached. Whatever was gathered before a
// failure is returned without error; only cancellation and a missing API key
// are reported as errors.
func (c *Client) ListTitles(ctx context.Context) ([]Title, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	all := make([]Title, 0, c.config.PageSize)
	for page := 1; page <= c.config.MaxPages; page++ {
		params := c.params()
		params.Set("source_ids", strconv.Itoa(c.sourceID))
		params.Set("regions", c.jurisdiction)
		params.Set("types", Types)
		params.Set("limit", strconv.Itoa(c.config.PageSize))
		params.Set("page", strconv.Itoa(page))

		var resp ListTitlesResponse
		if err := c.doRequest(ctx, c.config.BaseURL+"/list-titles/", params, &resp); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return all, ctxErr
			}
			c.logger.Warn().Err(err).Int("page", page).Int("gathered", len(all)).Msg("Discovery page failed, stopping")
			break
		}

		if len(resp.Titles) == 0 {
			c.logger.Debug().Int("page", page).Msg("Empty page, discovery complete")
			break
		}

		all = append(all, resp.Titles...)
		c.logger.Debug().
			Int("page", page).
			Int("added", len(resp.Titles)).
			Int("total", len(all)).
			Msg("Fetched discovery page")
	}

	c.logger.Info().Int("titles", len(all)).Msg("Discovery finished")
	return all, nil
}

// GetTitle looks up a single title by its Watchmode id.
func (c *Client) GetTitle(ctx context.Context, id string) (*TitleDetails, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/title/%s/details/", c.config.BaseURL, url.PathEscape(id))

	var details TitleDetails
	if err := c.doRequest(ctx, endpoint, c.params(), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *Client) params() url.Values {
	params := url.Values{}
	params.Set("apiKey", c.config.APIKey)
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
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderRequest("watchmode", 0, time.Since(start))
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest("watchmode", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.StatusMsg != "" {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMsg).
				Msg("Watchmode API error")
		}
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
