// Package main provides the entrypoint for the mobile ID portal API server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/airquality"
	"github.com/mobileid/portal/internal/airquality/airkorea"
	"github.com/mobileid/portal/internal/api"
	"github.com/mobileid/portal/internal/api/handler"
	"github.com/mobileid/portal/internal/api/middleware"
	"github.com/mobileid/portal/internal/auth"
	"github.com/mobileid/portal/internal/config"
	"github.com/mobileid/portal/internal/database"
	"github.com/mobileid/portal/internal/fuel"
	"github.com/mobileid/portal/internal/fuel/opinet"
	"github.com/mobileid/portal/internal/parking"
	"github.com/mobileid/portal/internal/parking/seoul"
	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/suggestion"
	"github.com/mobileid/portal/internal/telemetry"
	"github.com/mobileid/portal/internal/traffic"
	"github.com/mobileid/portal/internal/traffic/expressway"
	"github.com/mobileid/portal/internal/traffic/molit"
	"github.com/mobileid/portal/internal/weather"
	"github.com/mobileid/portal/internal/weather/kma"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "mobileid-api"

	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil && level != zerolog.NoLevel {
		log = log.Level(level)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.App.Env).
		Msg("starting mobile ID portal API")

	if missing := cfg.MissingKeys(); len(missing) > 0 {
		log.Warn().
			Strs("providers", missing).
			Msg("no API key configured, these feeds will serve fallback data")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.App.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	feedMetrics, err := telemetry.NewFeedMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize feed metrics")
		os.Exit(1)
	}

	// Upstream clients share one registry so /api/ops/status can report them.
	registry := resilience.NewRegistry()
	upstream := func(name string) *resilience.Client {
		rc := resilience.DefaultClientConfig(name)
		rc.Timeout = cfg.Providers.Timeout
		rc.MaxRetries = cfg.Providers.MaxRetries
		rc.Registry = registry
		if name == opinet.ProviderName {
			rc.Header = opinet.Headers
		}
		return resilience.NewClient(rc)
	}

	providers := cfg.Providers
	expresswayKey := providers.Expressway.APIKey
	if expresswayKey == "" {
		expresswayKey = providers.Molit.APIKey
	}

	fuelService := fuel.NewService(fuel.ServiceConfig{
		Provider: opinet.NewClient(opinet.ClientConfig{
			APIKey:     providers.Opinet.APIKey,
			BaseURL:    providers.Opinet.BaseURL,
			HTTPClient: upstream(opinet.ProviderName),
		}),
		Logger:  log,
		Metrics: feedMetrics,
	})

	trafficService := traffic.NewService(traffic.ServiceConfig{
		Routes: expressway.NewClient(expressway.ClientConfig{
			APIKey:     expresswayKey,
			BaseURL:    providers.Expressway.BaseURL,
			HTTPClient: upstream(expressway.ProviderName),
		}),
		Events: molit.NewClient(molit.ClientConfig{
			APIKey:     providers.Molit.APIKey,
			BaseURL:    providers.Molit.BaseURL,
			HTTPClient: upstream(molit.ProviderName),
		}),
		Logger:  log,
		Metrics: feedMetrics,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: kma.NewClient(kma.ClientConfig{
			APIKey:     providers.DataGoKR.APIKey,
			BaseURL:    providers.DataGoKR.BaseURL,
			HTTPClient: upstream(kma.ProviderName),
		}),
		Logger:  log,
		Metrics: feedMetrics,
	})

	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Provider: airkorea.NewClient(airkorea.ClientConfig{
			APIKey:     providers.DataGoKR.APIKey,
			BaseURL:    providers.DataGoKR.BaseURL,
			HTTPClient: upstream(airkorea.ProviderName),
		}),
		Logger:  log,
		Metrics: feedMetrics,
	})

	parkingService := parking.NewService(parking.ServiceConfig{
		Provider: seoul.NewClient(seoul.ClientConfig{
			APIKey:     providers.Seoul.APIKey,
			BaseURL:    providers.Seoul.BaseURL,
			HTTPClient: upstream(seoul.ProviderName),
		}),
		Logger:  log,
		Metrics: feedMetrics,
	})
	log.Info().Int("upstreams", registry.Len()).Msg("feed services initialized")

	// Suggestions are kept in memory unless a database is enabled.
	subsystems := map[string]handler.Pinger{}
	var repo suggestion.Repository = suggestion.NewInMemoryRepository()
	if cfg.Database.Enabled {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		pgRepo := suggestion.NewPostgresRepository(pool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare suggestions table")
		}
		repo = pgRepo
		subsystems["database"] = pool
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Name).
			Msg("database connected")
	}

	var notifier suggestion.Notifier = suggestion.NopNotifier{}
	if cfg.PubSub.Enabled() {
		psNotifier, err := suggestion.NewPubSubNotifier(ctx, suggestion.PubSubNotifierConfig{
			ProjectID: cfg.PubSub.ProjectID,
			Topic:     cfg.PubSub.Topic,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub notifier")
		}
		defer func() {
			if closeErr := psNotifier.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub notifier")
			}
		}()
		notifier = psNotifier
		log.Info().
			Str("project_id", cfg.PubSub.ProjectID).
			Str("topic", cfg.PubSub.Topic).
			Msg("suggestion notifications enabled")
	}

	suggestionService := suggestion.NewService(suggestion.ServiceConfig{
		Repository: repo,
		Notifier:   notifier,
		Logger:     log,
	})

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: cfg.Auth.SigningKey,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
	})
	if !jwtService.Enabled() {
		log.Warn().Msg("JWT_SIGNING_KEY not set - /api/ops/status will reject every request")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequireTLS:     cfg.HTTP.RequireTLS,
		ExposeDetails:  cfg.IsDevelopment(),
		Fuel:           fuelService,
		Traffic:        trafficService,
		Weather:        weatherService,
		AirQuality:     airQualityService,
		Parking:        parkingService,
		Suggestions:    suggestionService,
		Tokens:         jwtService,
		Registry:       registry,
		Subsystems:     subsystems,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Providers.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
