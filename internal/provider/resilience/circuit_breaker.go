// Package resilience wraps upstream feed calls in a timeout, an optional retry
// budget and a per-upstream circuit breaker. An open breaker is reported as
// ErrCircuitOpen so callers can go straight to their fallback payload.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker guarding one upstream.
type BreakerConfig struct {
	Name string

	// HalfOpenRequests is how many probes are let through while half-open.
	HalfOpenRequests uint32

	// OpenFor is how long the breaker stays open before probing again.
	OpenFor time.Duration

	// TripAfter is the number of consecutive failures that opens the breaker.
	TripAfter uint32

	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker used for public data feeds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		HalfOpenRequests: 1,
		OpenFor:          30 * time.Second,
		TripAfter:        5,
	}
}

// ConsecutiveFailures returns a trip function that opens after n failures in a row.
func ConsecutiveFailures(n uint32) func(gobreaker.Counts) bool {
	if n == 0 {
		n = 1
	}
	return func(c gobreaker.Counts) bool {
		return c.ConsecutiveFailures >= n
	}
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	onChange := cfg.OnStateChange
	if onChange == nil {
		onChange = logStateChange
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.HalfOpenRequests,
		Timeout:       cfg.OpenFor,
		ReadyToTrip:   ConsecutiveFailures(cfg.TripAfter),
		IsSuccessful:  upstreamHealthy,
		OnStateChange: onChange,
	})
}

// upstreamHealthy reports whether err leaves the upstream's health intact:
// 4xx replies are the caller's fault and a cancelled caller says nothing
// about the upstream.
func upstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode < 500
}

func logStateChange(name string, from, to gobreaker.State) {
	log.Warn().
		Str("upstream", name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state changed")
}
