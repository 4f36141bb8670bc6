package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the HTTP server instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates the HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests_in_flight",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("Size of HTTP server responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware returns an HTTP middleware that records metrics for each request.
// Route attributes use the chi pattern, not the raw path.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			method := attribute.String("http.request.method", r.Method)
			m.requestsInFlight.Add(r.Context(), 1, metric.WithAttributes(method))
			defer m.requestsInFlight.Add(r.Context(), -1, metric.WithAttributes(method))

			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}

			attrs := metric.WithAttributes(
				method,
				attribute.String("http.route", route),
				attribute.String("http.response.status_code", strconv.Itoa(wrapped.statusCode)),
				attribute.Bool("error", wrapped.statusCode >= http.StatusBadRequest),
			)

			m.requestDuration.Record(r.Context(), time.Since(start).Seconds(), attrs)
			m.requestTotal.Add(r.Context(), 1, attrs)
			m.responseSize.Record(r.Context(), wrapped.written, attrs)
		})
	}
}
