package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/airquality"
	"github.com/mobileid/portal/internal/weather"
)

// ProbeJob fetches the weather and air quality feeds for each target and
// reports which ones served live data.
type ProbeJob struct {
	config ProbeConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	weatherService    *weather.Service
	airQualityService *airquality.Service
}

// ProbeJobConfig holds configuration for creating a ProbeJob.
type ProbeJobConfig struct {
	Config            ProbeConfig
	Logger            zerolog.Logger
	WeatherService    *weather.Service
	AirQualityService *airquality.Service
}

// NewProbeJob creates a new probe job.
func NewProbeJob(cfg ProbeJobConfig) *ProbeJob {
	return &ProbeJob{
		config:            cfg.Config.withDefaults(),
		logger:            cfg.Logger,
		weatherService:    cfg.WeatherService,
		airQualityService: cfg.AirQualityService,
	}
}

// ProbeResult contains the result of a probe run.
type ProbeResult struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Checks counts feed calls; every call is either Live or Fallback.
	Checks   int
	Live     int
	Fallback int
	Failures []ProbeFailure
}

// ProbeFailure is one feed call that served fallback data.
type ProbeFailure struct {
	Feed   string
	Target string
	Error  string
}

// Healthy reports whether at least half the checks served live data.
func (r *ProbeResult) Healthy() bool {
	return r.Live >= r.Fallback
}

// Run probes every configured target.
func (j *ProbeJob) Run(ctx context.Context) *ProbeResult {
	startTime := time.Now()
	result := &ProbeResult{StartTime: startTime}

	j.logger.Info().
		Int("targets", len(j.config.Targets)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting upstream probe")

	targets := make(chan ProbeTarget, len(j.config.Targets))
	checks := make(chan check, 2*len(j.config.Targets))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.probeWorker(ctx, targets, checks)
		}()
	}

	for _, t := range j.config.Targets {
		targets <- t
	}
	close(targets)

	go func() {
		wg.Wait()
		close(checks)
	}()

	for c := range checks {
		result.Checks++
		if c.err == nil {
			result.Live++
			continue
		}
		result.Fallback++
		result.Failures = append(result.Failures, ProbeFailure{
			Feed:   c.feed,
			Target: c.target,
			Error:  c.err.Error(),
		})
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("checks", result.Checks).
		Int("live", result.Live).
		Int("fallback", result.Fallback).
		Msg("upstream probe completed")

	return result
}

type check struct {
	feed   string
	target string
	err    error
}

func (j *ProbeJob) probeWorker(ctx context.Context, targets <-chan ProbeTarget, out chan<- check) {
	for t := range targets {
		if ctx.Err() != nil {
			return
		}
		j.probeTarget(ctx, t, out)
	}
}

func (j *ProbeJob) probeTarget(ctx context.Context, t ProbeTarget, out chan<- check) {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.weatherService != nil {
		res := j.weatherService.Current(ctx, t.Lat, t.Lng)
		out <- check{feed: "weather", target: t.Name, err: res.Err}
	}

	if j.airQualityService != nil {
		res := j.airQualityService.Readings(ctx, t.Sido)
		out <- check{feed: "air-quality", target: t.Name, err: res.Err}
	}
}
