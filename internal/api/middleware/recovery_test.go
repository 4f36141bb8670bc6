package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/api/middleware"
	"github.com/mobileid/portal/internal/api/models"
)

func TestRecovery_ReturnsProblem(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.Recovery(zerolog.New(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/parking", http.NoBody)
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() { handler.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeInternal, problem.Type)
	assert.Equal(t, "/api/parking", problem.Instance)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	handler := middleware.Recovery(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/parking", http.NoBody)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})
}
