package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/api/models"
)

// Recovery returns a middleware that recovers from panics and returns a 500
// Problem response. http.ErrAbortHandler is re-panicked so the server can
// abort the connection.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				requestID := GetRequestID(r.Context())
				log.Error().
					Str("request_id", requestID).
					Str("path", r.URL.Path).
					Interface("error", rec).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				models.NewProblem(http.StatusInternalServerError, requestID, "an unexpected error occurred").
					At(r.URL.Path).
					Write(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
