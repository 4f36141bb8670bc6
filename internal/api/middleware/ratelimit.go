package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/mobileid/portal/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
}

// Default rate limit configurations.
var (
	// FeedRateLimit applies to the upstream-backed feed endpoints (60 req/min).
	FeedRateLimit = RateLimitConfig{
		RequestLimit: 60,
		WindowLength: time.Minute,
	}

	// SubmitRateLimit applies to form submissions (10 req/min).
	SubmitRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to everything else (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware keyed on the client IP.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceeded(cfg)),
	)
}

// RateLimitBySubject keys on the admin token subject, falling back to the
// client IP for unauthenticated requests.
func RateLimitBySubject(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyBySubjectOrIP),
		httprate.WithLimitHandler(rateLimitExceeded(cfg)),
	)
}

func keyBySubjectOrIP(r *http.Request) (string, error) {
	if sub := GetSubject(r.Context()); sub != "" {
		return "sub:" + sub, nil
	}
	return httprate.KeyByRealIP(r)
}

// rateLimitExceeded writes an RFC7807 Problem; Retry-After is the window
// length since httprate does not expose the exact reset time.
func rateLimitExceeded(cfg RateLimitConfig) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(cfg.WindowLength.Seconds()))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", retryAfter)
		models.NewProblem(http.StatusTooManyRequests, GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.").
			At(r.URL.Path).
			Write(w)
	}
}
