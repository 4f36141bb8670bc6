package middleware

import (
	"net/http"

	"github.com/mobileid/portal/internal/api/models"
)

// securityHeaders are set on every response. The API only serves JSON, so
// the content policy forbids everything; geolocation stays available to the
// portal's own origin for the nearby-stations view.
var securityHeaders = [...][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(self)"},
}

// SecurityHeaders adds the security headers before calling next.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects requests whose X-Forwarded-Proto says plain HTTP. It is
// a pass-through when enabled is false.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			proto := r.Header.Get("X-Forwarded-Proto")
			if proto != "" && proto != "https" {
				models.NewProblem(http.StatusForbidden, GetRequestID(r.Context()), "use https:// to reach the portal API").
					At(r.URL.Path).
					Write(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
