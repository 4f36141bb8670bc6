// Package feed holds what every public data feed shares: the response
// envelope, the sentinel errors upstream clients return, and Resolve, which
// turns an upstream failure into the feed's fallback rows.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/telemetry"
)

var (
	// ErrUnexpectedShape means the upstream answered but the expected field was missing.
	ErrUnexpectedShape = errors.New("unexpected upstream response shape")

	// ErrMissingKey means no API key is configured, so the upstream is never called.
	ErrMissingKey = errors.New("upstream api key not configured")

	// ErrInvalidInput means the request cannot be answered by the upstream,
	// so it is never called.
	ErrInvalidInput = errors.New("input outside what the upstream accepts")
)

// Fallback reasons reported in metrics and logs.
const (
	ReasonMissingKey      = "missing_key"
	ReasonInvalidInput    = "invalid_input"
	ReasonUnexpectedShape = "unexpected_shape"
	ReasonCircuitOpen     = "circuit_open"
	ReasonUpstreamError   = "upstream_error"
)

// Result is the outcome of one feed request.
type Result[T any] struct {
	Items    []T
	Fallback bool
	Message  string
	Err      error
}

// Source describes one feed: its name and what to serve when the upstream fails.
type Source[T any] struct {
	Name     string
	Message  string
	Fallback func() []T
	Logger   zerolog.Logger
	Metrics  *telemetry.FeedMetrics
}

// Resolve calls fetch and returns its rows, or the fallback rows when fetch
// fails for any reason. It never returns an error; the failure is kept in
// Result.Err for diagnostics.
func Resolve[T any](ctx context.Context, src Source[T], fetch func(context.Context) ([]T, error)) Result[T] {
	start := time.Now()
	items, err := fetch(ctx)
	if !skippedUpstream(err) {
		src.Metrics.RecordUpstream(ctx, src.Name, time.Since(start), err)
	}

	if err == nil {
		if items == nil {
			items = []T{}
		}
		return Result[T]{Items: items}
	}

	reason := Reason(err)
	src.Logger.Warn().
		Err(err).
		Str("feed", src.Name).
		Str("reason", reason).
		Msg("serving fallback data")
	src.Metrics.RecordFallback(ctx, src.Name, reason)

	return Result[T]{
		Items:    src.Fallback(),
		Fallback: true,
		Message:  src.Message,
		Err:      err,
	}
}

// Reason classifies a fetch error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingKey):
		return ReasonMissingKey
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, ErrUnexpectedShape):
		return ReasonUnexpectedShape
	case errors.Is(err, resilience.ErrCircuitOpen):
		return ReasonCircuitOpen
	default:
		return ReasonUpstreamError
	}
}

func skippedUpstream(err error) bool {
	return errors.Is(err, ErrMissingKey) || errors.Is(err, ErrInvalidInput)
}

// Raw marshals typed rows into raw JSON rows so they can share a feed with
// upstream items that are passed through untouched.
func Raw[T any](rows ...T) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}
