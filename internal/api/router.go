// Package api provides the HTTP API for the mobile ID portal.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/airquality"
	"github.com/mobileid/portal/internal/api/handler"
	"github.com/mobileid/portal/internal/api/middleware"
	"github.com/mobileid/portal/internal/api/response"
	"github.com/mobileid/portal/internal/directory"
	"github.com/mobileid/portal/internal/fuel"
	"github.com/mobileid/portal/internal/parking"
	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/suggestion"
	"github.com/mobileid/portal/internal/traffic"
	"github.com/mobileid/portal/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// AllowedOrigins defaults to every origin.
	AllowedOrigins []string
	RequireTLS     bool

	// ExposeDetails adds upstream error text to fallback envelopes.
	ExposeDetails bool

	Fuel        *fuel.Service
	Traffic     *traffic.Service
	Weather     *weather.Service
	AirQuality  *airquality.Service
	Parking     *parking.Service
	Directory   *directory.Directory
	Suggestions *suggestion.Service

	Tokens     middleware.TokenValidator
	Registry   *resilience.Registry
	Subsystems map[string]handler.Pinger
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "mobileid-api"
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	if cfg.Directory == nil {
		cfg.Directory = directory.New()
	}
	if cfg.Suggestions == nil {
		cfg.Suggestions = suggestion.NewService(suggestion.ServiceConfig{Logger: cfg.Logger})
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(chimiddleware.RealIP)            // Real IP for logs and rate limits
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	feedHandler := handler.NewFeedHandler(handler.FeedHandlerConfig{
		Fuel:          cfg.Fuel,
		Traffic:       cfg.Traffic,
		Weather:       cfg.Weather,
		AirQuality:    cfg.AirQuality,
		Parking:       cfg.Parking,
		ExposeDetails: cfg.ExposeDetails,
	})
	directoryHandler := handler.NewDirectoryHandler(cfg.Directory)
	suggestionHandler := handler.NewSuggestionHandler(cfg.Suggestions)
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:    cfg.Version,
		BuildTime:  cfg.BuildTime,
		Registry:   cfg.Registry,
		Subsystems: cfg.Subsystems,
	})

	feedRateLimit := middleware.RateLimitByIP(middleware.FeedRateLimit)         // 60 req/min
	submitRateLimit := middleware.RateLimitByIP(middleware.SubmitRateLimit)     // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	r.Route("/api", func(r chi.Router) {
		// Upstream-backed feeds
		r.Group(func(r chi.Router) {
			r.Use(feedRateLimit)
			r.Get("/oil-price", feedHandler.OilPrice)
			r.Get("/opinet", feedHandler.OilPrice)
			r.Get("/nearby-stations", feedHandler.NearbyStations)
			r.Get("/traffic-info", feedHandler.TrafficInfo)
			r.Get("/traffic", feedHandler.TrafficEvents)
			r.Get("/weather", feedHandler.Weather)
			r.Get("/air-quality", feedHandler.AirQuality)
			r.Get("/parking", feedHandler.Parking)
		})

		// Static content
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/menu", directoryHandler.Menu)
			r.Get("/issuance-links", directoryHandler.IssuanceLinks)
			r.Get("/places", directoryHandler.SearchPlaces)
			r.Get("/places/{placeID}", directoryHandler.GetPlace)
			r.Get("/community/posts", directoryHandler.CommunityPosts)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", suggestionHandler.List)
			r.With(submitRateLimit, middleware.RequireJSON).Post("/", suggestionHandler.Create)
		})

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			if cfg.Tokens != nil {
				r.With(
					middleware.AdminAuth(cfg.Tokens),
					middleware.RateLimitBySubject(middleware.StandardRateLimit),
				).Get("/status", opsHandler.SystemStatus)
			}
		})
	})

	return r
}
