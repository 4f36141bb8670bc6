package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mobileid/portal/internal/api/models"
	"github.com/mobileid/portal/internal/api/response"
	"github.com/mobileid/portal/internal/suggestion"
)

// maxSuggestionBody bounds the POST body.
const maxSuggestionBody = 16 << 10

// SuggestionHandler handles the feature-suggestion form.
type SuggestionHandler struct {
	svc *suggestion.Service
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(svc *suggestion.Service) *SuggestionHandler {
	return &SuggestionHandler{svc: svc}
}

// List handles GET /api/suggestions, newest first.
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.svc.List(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to list suggestions")
		return
	}
	writeList(w, r, items)
}

// Create handles POST /api/suggestions.
func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in suggestion.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSuggestionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		response.BadRequest(w, r, "invalid request body")
		return
	}

	created, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, suggestion.ErrInvalidType):
			response.BadRequest(w, r, "unknown suggestion type", models.FieldError{Field: "type", Message: "must be one of UI/UX 개선, 신규 기능 추가, 오류 신고, 기타", Code: "INVALID"})
		case errors.Is(err, suggestion.ErrEmptyDetails):
			response.BadRequest(w, r, "details are required", models.FieldError{Field: "details", Message: "required", Code: "REQUIRED"})
		case errors.Is(err, suggestion.ErrTooLong):
			response.BadRequest(w, r, "details are too long", models.FieldError{Field: "details", Message: "must be at most " + strconv.Itoa(suggestion.MaxDetailsLength) + " characters", Code: "TOO_LONG"})
		default:
			response.InternalError(w, r, "failed to store suggestion")
		}
		return
	}

	response.Created(w, r, "", created)
}
