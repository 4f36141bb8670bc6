package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/provider/resilience"
)

func fastConfig(name string) resilience.ClientConfig {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Timeout = time.Second
	cfg.InitialInterval = 5 * time.Millisecond
	cfg.MaxInterval = 10 * time.Millisecond
	return cfg
}

func TestClient_GetReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("ok"))

	body, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestClient_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("single"))

	_, err := client.Get(context.Background(), server.URL)
	require.Error(t, err)

	var se *resilience.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := fastConfig("retry")
	cfg.MaxRetries = 3
	client := resilience.NewClient(cfg)

	body, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("SERVICE_KEY_IS_NOT_REGISTERED_ERROR"))
	}))
	defer server.Close()

	cfg := fastConfig("4xx")
	cfg.MaxRetries = 3
	client := resilience.NewClient(cfg)

	_, err := client.Get(context.Background(), server.URL)

	var se *resilience.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "SERVICE_KEY")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_BreakerOpensAndShortCircuits(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastConfig("trip")
	cfg.Breaker = &resilience.BreakerConfig{HalfOpenRequests: 1, OpenFor: time.Minute, TripAfter: 2}
	client := resilience.NewClient(cfg)

	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	_, err := client.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), attempts.Load(), "open breaker must not reach the upstream")
}

func TestClient_ClientErrorsLeaveBreakerClosed(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := fastConfig("404")
	cfg.Breaker = &resilience.BreakerConfig{HalfOpenRequests: 1, OpenFor: time.Minute, TripAfter: 2}
	client := resilience.NewClient(cfg)

	for i := 0; i < 5; i++ {
		_, err := client.Get(context.Background(), server.URL)
		var se *resilience.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
	}

	assert.Equal(t, gobreaker.StateClosed, client.State())
	assert.Zero(t, client.Counts().ConsecutiveFailures)
	assert.Equal(t, int32(5), attempts.Load())
}

func TestClient_CancelledCallerLeavesBreakerClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig("cancelled")
	cfg.Breaker = &resilience.BreakerConfig{HalfOpenRequests: 1, OpenFor: time.Minute, TripAfter: 2}
	client := resilience.NewClient(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		_, err := client.Get(ctx, server.URL)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestClient_StatusErrorBodyKeepsWholeRunes(t *testing.T) {
	body := strings.Repeat("가", 100) // 300 bytes
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	_, err := resilience.NewClient(fastConfig("snippet")).Get(context.Background(), server.URL)

	var se *resilience.StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, utf8.ValidString(se.Body))
	assert.Equal(t, strings.Repeat("가", 85), se.Body)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig("slow")
	cfg.Timeout = 50 * time.Millisecond
	client := resilience.NewClient(cfg)

	_, err := client.Get(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("cancel"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL)
	assert.Error(t, err)
}

func TestClient_RecordsOutcomesInRegistry(t *testing.T) {
	fail := atomic.Bool{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := fastConfig("opinet")
	cfg.Registry = registry
	client := resilience.NewClient(cfg)
	assert.Equal(t, "opinet", client.Name())

	_, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)

	h := registry.Health("opinet")
	require.NotNil(t, h)
	require.NotNil(t, h.LastSuccessAt)
	assert.Nil(t, h.LastFailureAt)

	fail.Store(true)
	_, err = client.Get(context.Background(), server.URL)
	require.Error(t, err)

	h = registry.Health("opinet")
	require.NotNil(t, h.LastFailureAt)
	assert.Contains(t, h.LastError, "500")
}

func TestConsecutiveFailures(t *testing.T) {
	trip := resilience.ConsecutiveFailures(3)

	assert.False(t, trip(gobreaker.Counts{ConsecutiveFailures: 2, TotalFailures: 10}))
	assert.True(t, trip(gobreaker.Counts{ConsecutiveFailures: 3}))

	assert.True(t, resilience.ConsecutiveFailures(0)(gobreaker.Counts{ConsecutiveFailures: 1}))
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := resilience.DefaultClientConfig("kma")

	assert.Equal(t, "kma", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.Nil(t, cfg.Breaker)
}

func TestStatusError(t *testing.T) {
	err := &resilience.StatusError{StatusCode: http.StatusServiceUnavailable}
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "Service Unavailable")
}
