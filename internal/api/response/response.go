// Package response writes the API's JSON and Problem+JSON bodies.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/mobileid/portal/internal/api/middleware"
	"github.com/mobileid/portal/internal/api/models"
)

// JSON writes data with status, echoing the request ID.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 with an optional Location header.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, r, http.StatusCreated, data)
}

// Problem writes a Problem+JSON body for status, scoped to the request path.
func Problem(w http.ResponseWriter, r *http.Request, status int, detail string, errs ...models.FieldError) {
	p := models.NewProblem(status, middleware.GetRequestID(r.Context()), detail).At(r.URL.Path)
	if len(errs) > 0 {
		p.WithErrors(errs)
	}
	p.Write(w)
}

// BadRequest writes a 400 validation problem.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errs ...models.FieldError) {
	Problem(w, r, http.StatusBadRequest, detail, errs...)
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, http.StatusNotFound, detail)
}

// MethodNotAllowed writes a 405 problem naming the rejected method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Problem(w, r, http.StatusMethodNotAllowed, r.Method+" is not supported on "+r.URL.Path)
}

// InternalError writes a 500 problem. detail must not leak internals.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Problem(w, r, http.StatusInternalServerError, detail)
}

// MissingParams writes the 400 body feed endpoints use for absent query
// parameters. It keeps the feed envelope shape rather than Problem+JSON.
func MissingParams(w http.ResponseWriter, r *http.Request, message string) {
	JSON(w, r, http.StatusBadRequest, models.MissingParams{
		Success: false,
		Error:   "Missing parameters",
		Message: message,
	})
}
