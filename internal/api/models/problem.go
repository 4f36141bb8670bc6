package models

import (
	"encoding/json"
	"net/http"
)

// ProblemBaseURI prefixes every problem type the API emits.
const ProblemBaseURI = "https://api.mobileid-portal.kr/problems/"

// Problem types.
const (
	ProblemTypeValidation       = ProblemBaseURI + "validation-error"
	ProblemTypeUnauthorized     = ProblemBaseURI + "unauthorized"
	ProblemTypeTLSRequired      = ProblemBaseURI + "tls-required"
	ProblemTypeNotFound         = ProblemBaseURI + "not-found"
	ProblemTypeMethod           = ProblemBaseURI + "method-not-allowed"
	ProblemTypeUnsupportedMedia = ProblemBaseURI + "unsupported-media-type"
	ProblemTypeTooManyRequests  = ProblemBaseURI + "too-many-requests"
	ProblemTypeInternal         = ProblemBaseURI + "internal-error"
	ProblemTypeUnavailable      = ProblemBaseURI + "service-unavailable"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
// Feed endpoints never use it for upstream failures; those answer 200 with
// fallback rows.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// TraceID echoes the request ID.
	TraceID string `json:"traceId"`

	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError points at one invalid query parameter or body field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type problemKind struct {
	typ   string
	title string
}

// problemKinds maps each status the API answers with to its problem type.
var problemKinds = map[int]problemKind{
	http.StatusBadRequest:           {ProblemTypeValidation, "Validation error"},
	http.StatusUnauthorized:         {ProblemTypeUnauthorized, "Unauthorized"},
	http.StatusForbidden:            {ProblemTypeTLSRequired, "TLS required"},
	http.StatusNotFound:             {ProblemTypeNotFound, "Not found"},
	http.StatusMethodNotAllowed:     {ProblemTypeMethod, "Method not allowed"},
	http.StatusUnsupportedMediaType: {ProblemTypeUnsupportedMedia, "Unsupported media type"},
	http.StatusTooManyRequests:      {ProblemTypeTooManyRequests, "Too many requests"},
	http.StatusInternalServerError:  {ProblemTypeInternal, "Internal server error"},
	http.StatusServiceUnavailable:   {ProblemTypeUnavailable, "Service unavailable"},
}

// NewProblem builds the problem for status. Statuses without a registered
// kind get type "about:blank" and the standard status text, as RFC 7807
// prescribes.
func NewProblem(status int, traceID, detail string) *Problem {
	kind, ok := problemKinds[status]
	if !ok {
		kind = problemKind{typ: "about:blank", title: http.StatusText(status)}
	}
	return &Problem{
		Type:    kind.typ,
		Title:   kind.title,
		Status:  status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// At sets the request path the problem occurred on.
func (p *Problem) At(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors attaches field errors.
func (p *Problem) WithErrors(errs []FieldError) *Problem {
	p.Errors = errs
	return p
}

// Write sends the problem with its status code.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
