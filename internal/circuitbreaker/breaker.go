// Package circuitbreaker guards upstream provider calls so that an outage
// fails fast instead of tying up the refresh pipeline for hours.
package circuitbreaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/slipstream/flixcat/internal/metrics"
)

// ErrOpen is returned while the breaker rejects requests.
var ErrOpen = errors.New("circuit breaker open")

// Settings configures a Breaker.
type Settings struct {
	// ConsecutiveFailures trips the breaker. Defaults to 5.
	ConsecutiveFailures uint32
	// Timeout is how long the breaker stays open before probing. Defaults to 30s.
	Timeout time.Duration
	// Interval resets the closed-state counts. Zero keeps them until a state change.
	Interval time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open. Defaults to 1.
	HalfOpenRequests uint32
	// Ignore marks errors that say nothing about provider health (for example a
	// 404 for one title). They do not count as failures.
	Ignore func(error) bool
}

// Breaker wraps a gobreaker circuit breaker with logging and metrics.
type Breaker struct {
	name   string
	cb     *gobreaker.CircuitBreaker[any]
	logger zerolog.Logger
}

// New creates a breaker for the named provider.
func New(name string, s Settings, logger zerolog.Logger) *Breaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = 1
	}

	b := &Breaker{
		name:   name,
		logger: logger.With().Str("component", "circuit-breaker").Str("provider", name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	threshold := s.ConsecutiveFailures
	ignore := s.Ignore
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return ignore != nil && ignore(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateString(from), stateString(to)
			if to == gobreaker.StateOpen {
				b.logger.Warn().Str("from", fromStr).Str("to", toStr).Msg("Circuit opened")
			} else {
				b.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit state changed")
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return b
}

// Name returns the provider name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return stateString(b.cb.State())
}

// Do runs fn under the breaker. Rejections are reported as ErrOpen.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return b.record(err)
}

func (b *Breaker) record(err error) error {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return fmt.Errorf("%s: %w", b.name, ErrOpen)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return err
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
