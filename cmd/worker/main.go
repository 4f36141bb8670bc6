// Package main provides the entrypoint for the mobile ID portal worker. It
// archives suggestions published by the API and probes the upstream feeds.
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

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/airquality"
	"github.com/mobileid/portal/internal/airquality/airkorea"
	"github.com/mobileid/portal/internal/api/handler"
	"github.com/mobileid/portal/internal/config"
	"github.com/mobileid/portal/internal/database"
	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/suggestion"
	"github.com/mobileid/portal/internal/weather"
	"github.com/mobileid/portal/internal/weather/kma"
	"github.com/mobileid/portal/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "mobileid-worker").
		Str("version", Version).
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil && level != zerolog.NoLevel {
		log = log.Level(level)
	}
	if !cfg.PubSub.Enabled() || cfg.PubSub.Subscription == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID, PUBSUB_SUGGESTIONS_TOPIC and PUBSUB_SUBSCRIPTION must be set")
	}
	if !cfg.Database.Enabled {
		log.Fatal().Msg("the worker archives to Postgres; set DB_ENABLED=true")
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.App.Env).
		Msg("starting mobile ID portal worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	repo := suggestion.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare suggestions table")
	}

	registry := resilience.NewRegistry()
	upstream := func(name string) *resilience.Client {
		rc := resilience.DefaultClientConfig(name)
		rc.Timeout = cfg.Providers.Timeout
		rc.Registry = registry
		return resilience.NewClient(rc)
	}

	probe := worker.NewProbeJob(worker.ProbeJobConfig{
		Config: worker.DefaultProbeConfig(),
		Logger: log,
		WeatherService: weather.NewService(weather.ServiceConfig{
			Provider: kma.NewClient(kma.ClientConfig{
				APIKey:     cfg.Providers.DataGoKR.APIKey,
				BaseURL:    cfg.Providers.DataGoKR.BaseURL,
				HTTPClient: upstream(kma.ProviderName),
			}),
			Logger: log,
		}),
		AirQualityService: airquality.NewService(airquality.ServiceConfig{
			Provider: airkorea.NewClient(airkorea.ClientConfig{
				APIKey:     cfg.Providers.DataGoKR.APIKey,
				BaseURL:    cfg.Providers.DataGoKR.BaseURL,
				HTTPClient: upstream(airkorea.ProviderName),
			}),
			Logger: log,
		}),
	})

	archiver := worker.NewArchiver(repo, log)

	pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.PubSub.ProjectID,
		SubscriptionName: cfg.PubSub.Subscription,
		Dispatcher:       worker.NewDispatcher(archiver, probe, log),
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := pubsubHandler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub handler")
		}
	}()

	// Health endpoints for the container platform.
	ops := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:    Version,
		BuildTime:  BuildTime,
		Registry:   registry,
		Subsystems: map[string]handler.Pinger{"database": pool},
	})
	r := chi.NewRouter()
	r.Get("/health", ops.HealthCheck)
	r.Get("/ready", ops.ReadinessCheck)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	go func() {
		if err := pubsubHandler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub receive stopped")
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	stats := archiver.Stats()
	log.Info().
		Int64("archived", stats.Archived).
		Int64("dropped", stats.Dropped).
		Int64("failed", stats.Failed).
		Msg("worker stopped")
}
