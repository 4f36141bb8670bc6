package middleware

import (
	"mime"
	"net/http"

	"github.com/mobileid/portal/internal/api/models"
)

// RequireJSON rejects POST, PUT and PATCH bodies that declare a content type
// other than application/json. A missing Content-Type is allowed.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					models.NewProblem(http.StatusUnsupportedMediaType, GetRequestID(r.Context()), "Content-Type must be application/json").
						At(r.URL.Path).
						Write(w)
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
