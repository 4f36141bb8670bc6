package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const feedMeterName = "github.com/mobileid/portal/internal/feed"

// FeedMetrics counts upstream calls and fallback responses per feed.
type FeedMetrics struct {
	upstreamDuration metric.Float64Histogram
	upstreamTotal    metric.Int64Counter
	fallbackTotal    metric.Int64Counter
}

// NewFeedMetrics registers the feed instruments on the global meter provider.
func NewFeedMetrics() (*FeedMetrics, error) {
	meter := otel.Meter(feedMeterName)

	duration, err := meter.Float64Histogram(
		"feed.upstream.duration",
		metric.WithDescription("Duration of upstream feed calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	total, err := meter.Int64Counter(
		"feed.upstream.total",
		metric.WithDescription("Upstream feed calls"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	fallback, err := meter.Int64Counter(
		"feed.fallback.total",
		metric.WithDescription("Responses served from the built-in fallback payload"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &FeedMetrics{
		upstreamDuration: duration,
		upstreamTotal:    total,
		fallbackTotal:    fallback,
	}, nil
}

// RecordUpstream records one upstream call. A nil receiver is a no-op.
func (m *FeedMetrics) RecordUpstream(ctx context.Context, feed string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("feed.name", feed),
		attribute.Bool("error", err != nil),
	)
	m.upstreamDuration.Record(context.WithoutCancel(ctx), d.Seconds(), attrs)
	m.upstreamTotal.Add(context.WithoutCancel(ctx), 1, attrs)
}

// RecordFallback records one fallback response and why it was served.
func (m *FeedMetrics) RecordFallback(ctx context.Context, feed, reason string) {
	if m == nil {
		return
	}
	m.fallbackTotal.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(
		attribute.String("feed.name", feed),
		attribute.String("fallback.reason", reason),
	))
}
