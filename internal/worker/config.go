// Package worker runs the portal's background jobs: archiving suggestions
// published by the API and probing the upstream feeds.
package worker

import (
	"time"
)

// ProbeTarget is a place the probe job checks the weather and air quality
// feeds for.
type ProbeTarget struct {
	// Name is the human-readable name of the target.
	Name string

	Lat float64
	Lng float64

	// Sido is the AirKorea province name for the target.
	Sido string
}

// ProbeConfig holds configuration for the probe job.
type ProbeConfig struct {
	// Targets are the places to probe.
	// If empty, uses DefaultProbeTargets.
	Targets []ProbeTarget

	// Concurrency is the number of concurrent probes.
	// Default: 3
	Concurrency int

	// Timeout bounds the probe of one target.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultProbeConfig returns the default probe configuration.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Targets:     DefaultProbeTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultProbeTargets returns the metropolitan city halls.
func DefaultProbeTargets() []ProbeTarget {
	return []ProbeTarget{
		{Name: "서울", Lat: 37.5665, Lng: 126.9780, Sido: "서울"},
		{Name: "부산", Lat: 35.1796, Lng: 129.0756, Sido: "부산"},
		{Name: "대구", Lat: 35.8714, Lng: 128.6014, Sido: "대구"},
		{Name: "인천", Lat: 37.4563, Lng: 126.7052, Sido: "인천"},
		{Name: "광주", Lat: 35.1595, Lng: 126.8526, Sido: "광주"},
		{Name: "대전", Lat: 36.3504, Lng: 127.3845, Sido: "대전"},
		{Name: "울산", Lat: 35.5384, Lng: 129.3114, Sido: "울산"},
		{Name: "세종", Lat: 36.4800, Lng: 127.2890, Sido: "세종"},
		{Name: "제주", Lat: 33.4996, Lng: 126.5312, Sido: "제주"},
	}
}

func (c ProbeConfig) withDefaults() ProbeConfig {
	if len(c.Targets) == 0 {
		c.Targets = DefaultProbeTargets()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
