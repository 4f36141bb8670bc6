package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mobileid/portal/internal/api/models"
	"github.com/mobileid/portal/internal/auth"
)

// subjectKey is the context key for the authenticated token subject.
type subjectKey struct{}

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	ValidateAdminToken(token string) (*auth.Claims, error)
}

// AdminAuth rejects requests without a valid admin bearer token.
func AdminAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, r, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "invalid authorization header format")
				return
			}

			tokenString := strings.TrimSpace(authHeader[len(bearerPrefix):])
			if tokenString == "" {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			claims, err := validator.ValidateAdminToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrNoSigningKey):
					writeUnauthorized(w, r, "admin access is not configured")
				case errors.Is(err, auth.ErrTokenExpired):
					writeUnauthorized(w, r, "access token has expired")
				case errors.Is(err, auth.ErrNotAdmin):
					writeUnauthorized(w, r, "token is not an admin token")
				case errors.Is(err, auth.ErrInvalidToken):
					writeUnauthorized(w, r, "invalid access token")
				default:
					writeUnauthorized(w, r, "authentication failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized writes a 401 directly; the response package imports this one.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="mobileid-admin"`)
	models.NewProblem(http.StatusUnauthorized, GetRequestID(r.Context()), detail).
		At(r.URL.Path).
		Write(w)
}

// GetSubject returns the admin token subject, or "" if the request was not
// authenticated.
func GetSubject(ctx context.Context) string {
	if sub, ok := ctx.Value(subjectKey{}).(string); ok {
		return sub
	}
	return ""
}
