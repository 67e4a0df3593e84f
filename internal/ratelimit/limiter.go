// Package ratelimit throttles outbound calls to upstream providers.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config defines a token bucket.
type Config struct {
	// RequestsPerSecond is the sustained refill rate. Zero or negative disables limiting.
	RequestsPerSecond float64
	// Burst is the bucket size; values below 1 are treated as 1.
	Burst int
}

// Limiter is a token bucket for one provider.
type Limiter struct {
	name    string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewLimiter creates a limiter named after the provider it protects.
func NewLimiter(name string, cfg Config, logger zerolog.Logger) *Limiter {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		name:    name,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With().Str("component", "rate-limiter").Str("provider", name).Logger(),
	}
}

// Unlimited returns a limiter that never blocks. Used by tests and mocks.
func Unlimited(name string) *Limiter {
	return NewLimiter(name, Config{}, zerolog.Nop())
}

// Wait blocks until a request may be issued or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", l.name, err)
	}

	if waited := time.Since(start); waited > 100*time.Millisecond {
		l.logger.Trace().Dur("waited", waited).Msg("Throttled request")
	}
	return nil
}

// Name returns the provider name.
func (l *Limiter) Name() string {
	return l.name
}
