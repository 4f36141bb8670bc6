package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/mobileid/portal/internal/api/middleware"
)

func setupTestTracer() (*tracetest.SpanRecorder, func()) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return sr, func() {
		_ = tp.Shutdown(context.Background())
	}
}

func attrValue(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func onlySpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func TestTracing_ServerSpan(t *testing.T) {
	sr, cleanup := setupTestTracer()
	defer cleanup()

	h := middleware.RequestID(middleware.Tracing("mobileid-api")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, trace.SpanFromContext(r.Context()).SpanContext().IsValid())
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/air-quality?sido=부산", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, sr)
	assert.Equal(t, "GET /api/air-quality", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, codes.Unset, span.Status().Code, "4xx is not a server error")

	status, ok := attrValue(span, "http.response.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())

	service, ok := attrValue(span, "service.name")
	require.True(t, ok)
	assert.Equal(t, "mobileid-api", service.AsString())

	id, ok := attrValue(span, "request.id")
	require.True(t, ok)
	assert.Contains(t, id.AsString(), "req_")
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	sr, cleanup := setupTestTracer()
	defer cleanup()

	h := middleware.Tracing("mobileid-api")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/parking", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	h.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, sr)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
}

func TestTracing_ServerErrorStatus(t *testing.T) {
	sr, cleanup := setupTestTracer()
	defer cleanup()

	h := middleware.Tracing("mobileid-api")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ops/ready", nil))

	status := onlySpan(t, sr).Status()
	assert.Equal(t, codes.Error, status.Code)
	assert.Equal(t, "Service Unavailable", status.Description)
}

func TestTracing_NamesSpanAfterChiRoute(t *testing.T) {
	sr, cleanup := setupTestTracer()
	defer cleanup()

	r := chi.NewRouter()
	r.Use(middleware.Tracing("mobileid-api"))
	r.Get("/api/places/{placeID}", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/places/p1", nil))

	span := onlySpan(t, sr)
	assert.Equal(t, "GET /api/places/{placeID}", span.Name())

	route, ok := attrValue(span, "http.route")
	require.True(t, ok)
	assert.Equal(t, "/api/places/{placeID}", route.AsString())
}
