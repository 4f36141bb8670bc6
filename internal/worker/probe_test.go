package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/airquality"
	"github.com/mobileid/portal/internal/weather"
	"github.com/mobileid/portal/internal/worker"
)

type weatherProvider struct {
	err   error
	calls atomic.Int32
}

func (p *weatherProvider) Nowcast(context.Context, weather.NowcastQuery) ([]json.RawMessage, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return []json.RawMessage{json.RawMessage(`{"category":"T1H","obsrValue":"12.3"}`)}, nil
}

func (p *weatherProvider) Name() string { return "mock-weather" }

type airProvider struct {
	err   error
	calls atomic.Int32
}

func (p *airProvider) Readings(context.Context, string) ([]json.RawMessage, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return []json.RawMessage{json.RawMessage(`{"stationName":"중구","pm10Value":"32"}`)}, nil
}

func (p *airProvider) Name() string { return "mock-airquality" }

func newProbeJob(wp *weatherProvider, ap *airProvider, targets []worker.ProbeTarget) *worker.ProbeJob {
	return worker.NewProbeJob(worker.ProbeJobConfig{
		Config: worker.ProbeConfig{Targets: targets, Concurrency: 2, Timeout: time.Second},
		Logger: zerolog.Nop(),
		WeatherService: weather.NewService(weather.ServiceConfig{
			Provider: wp, Logger: zerolog.Nop(),
		}),
		AirQualityService: airquality.NewService(airquality.ServiceConfig{
			Provider: ap, Logger: zerolog.Nop(),
		}),
	})
}

func TestProbeJob_AllLive(t *testing.T) {
	wp, ap := &weatherProvider{}, &airProvider{}
	job := newProbeJob(wp, ap, nil)

	result := job.Run(context.Background())

	n := len(worker.DefaultProbeTargets())
	assert.Equal(t, 2*n, result.Checks)
	assert.Equal(t, 2*n, result.Live)
	assert.Zero(t, result.Fallback)
	assert.Empty(t, result.Failures)
	assert.True(t, result.Healthy())
	assert.Equal(t, int32(n), wp.calls.Load())
	assert.Equal(t, int32(n), ap.calls.Load())
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestProbeJob_RecordsFallbacks(t *testing.T) {
	wp := &weatherProvider{err: errors.New("upstream returned 503")}
	ap := &airProvider{}
	targets := []worker.ProbeTarget{{Name: "서울", Lat: 37.5665, Lng: 126.9780, Sido: "서울"}}

	result := newProbeJob(wp, ap, targets).Run(context.Background())

	assert.Equal(t, 2, result.Checks)
	assert.Equal(t, 1, result.Live)
	assert.Equal(t, 1, result.Fallback)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "weather", result.Failures[0].Feed)
	assert.Equal(t, "서울", result.Failures[0].Target)
	assert.Contains(t, result.Failures[0].Error, "503")
	assert.True(t, result.Healthy())
}

func TestProbeJob_InvalidTargetCountsAsFallback(t *testing.T) {
	targets := []worker.ProbeTarget{{Name: "도쿄", Lat: 35.6762, Lng: 139.6503, Sido: "도쿄"}}

	result := newProbeJob(&weatherProvider{}, &airProvider{}, targets).Run(context.Background())

	assert.Equal(t, 2, result.Fallback)
	assert.False(t, result.Healthy())
	require.Len(t, result.Failures, 2)
}
