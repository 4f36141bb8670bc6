package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mobileid/portal/internal/api/middleware"
	"github.com/mobileid/portal/internal/api/models"
	"github.com/mobileid/portal/internal/api/response"
)

// serve runs write behind the RequestID middleware with a fixed incoming
// request ID.
func serve(method, path string, write http.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	req.Header.Set("X-Request-Id", "req_fixed")
	rec := httptest.NewRecorder()
	middleware.RequestID(write).ServeHTTP(rec, req)
	return rec
}

func TestJSON(t *testing.T) {
	rec := serve(http.MethodGet, "/api/issuance-links", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]int{"count": 3})
	})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req_fixed" {
		t.Errorf("X-Request-Id = %q", got)
	}
	if got := rec.Body.String(); got != "{\"count\":3}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestJSON_NilDataAndNoRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ops/health", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusNoContent, nil)

	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
	if _, ok := rec.Header()["X-Request-Id"]; ok {
		t.Error("X-Request-Id set without a request ID in context")
	}
}

func TestCreated(t *testing.T) {
	rec := serve(http.MethodPost, "/api/suggestions", func(w http.ResponseWriter, r *http.Request) {
		response.Created(w, r, "/api/suggestions/s1", map[string]string{"id": "s1"})
	})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/api/suggestions/s1" {
		t.Errorf("Location = %q", got)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req_fixed" {
		t.Errorf("X-Request-Id = %q", got)
	}
}

func TestProblems(t *testing.T) {
	tests := []struct {
		name   string
		method string
		write  func(http.ResponseWriter, *http.Request)
		status int
		typ    string
		detail string
		fields int
	}{
		{
			name:   "bad request with fields",
			method: http.MethodGet,
			write: func(w http.ResponseWriter, r *http.Request) {
				response.BadRequest(w, r, "lat and lng must both be given as numbers",
					models.FieldError{Field: "lat", Message: "must be a number"},
					models.FieldError{Field: "lng", Message: "must be a number"})
			},
			status: http.StatusBadRequest,
			typ:    models.ProblemTypeValidation,
			detail: "lat and lng must both be given as numbers",
			fields: 2,
		},
		{
			name:   "not found",
			method: http.MethodGet,
			write:  func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "place not found") },
			status: http.StatusNotFound,
			typ:    models.ProblemTypeNotFound,
			detail: "place not found",
		},
		{
			name:   "method not allowed",
			method: http.MethodDelete,
			write:  response.MethodNotAllowed,
			status: http.StatusMethodNotAllowed,
			typ:    models.ProblemTypeMethod,
			detail: "DELETE is not supported on /api/places/p1",
		},
		{
			name:   "internal error",
			method: http.MethodGet,
			write:  func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "failed to list suggestions") },
			status: http.StatusInternalServerError,
			typ:    models.ProblemTypeInternal,
			detail: "failed to list suggestions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.method, "/api/places/p1", tt.write)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
				t.Errorf("Content-Type = %q", got)
			}

			var p models.Problem
			if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
				t.Fatalf("decoding problem: %v", err)
			}
			if p.Type != tt.typ {
				t.Errorf("type = %q, want %q", p.Type, tt.typ)
			}
			if p.Detail != tt.detail {
				t.Errorf("detail = %q, want %q", p.Detail, tt.detail)
			}
			if p.Instance != "/api/places/p1" {
				t.Errorf("instance = %q", p.Instance)
			}
			if p.TraceID != "req_fixed" {
				t.Errorf("traceId = %q", p.TraceID)
			}
			if len(p.Errors) != tt.fields {
				t.Errorf("errors = %d, want %d", len(p.Errors), tt.fields)
			}
		})
	}
}

func TestMissingParams(t *testing.T) {
	rec := serve(http.MethodGet, "/api/nearby-stations", func(w http.ResponseWriter, r *http.Request) {
		response.MissingParams(w, r, "위도(lat)와 경도(lng) 파라미터가 필요합니다.")
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var body models.MissingParams
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	want := models.MissingParams{
		Success: false,
		Error:   "Missing parameters",
		Message: "위도(lat)와 경도(lng) 파라미터가 필요합니다.",
	}
	if body != want {
		t.Errorf("body = %+v, want %+v", body, want)
	}
}
