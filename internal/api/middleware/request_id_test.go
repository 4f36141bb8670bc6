package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/api/middleware"
)

func serveWithRequestID(t *testing.T, incoming string) (header, seen string) {
	t.Helper()
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/oil-price", nil)
	if incoming != "" {
		req.Header.Set("X-Request-Id", incoming)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	return rec.Header().Get("X-Request-Id"), seen
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"kept when well formed", "lb-7f3a.01:retry", true},
		{"replaced with spaces", "has spaces", false},
		{"replaced with newline", "line\nbreak", false},
		{"replaced when too long", strings.Repeat("a", 129), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, seen := serveWithRequestID(t, tt.incoming)

			assert.Equal(t, header, seen, "context and header must agree")
			if tt.keep {
				assert.Equal(t, tt.incoming, header)
				return
			}
			assert.True(t, strings.HasPrefix(header, "req_"), header)
			assert.Len(t, header, len("req_")+22)
		})
	}
}

func TestRequestID_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 50)
	for range 50 {
		id, _ := serveWithRequestID(t, "")
		_, dup := seen[id]
		require.False(t, dup, "duplicate request ID %s", id)
		seen[id] = struct{}{}
	}
}

func TestGetRequestID_OutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/menu", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}
