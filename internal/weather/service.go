package weather

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/telemetry"
)

// FallbackMessage is shown with the constant rows.
const FallbackMessage = "날씨 정보를 불러올 수 없어 참고용 데이터를 표시합니다."

// Provider returns raw nowcast rows for one grid cell.
type Provider interface {
	Nowcast(ctx context.Context, q NowcastQuery) ([]json.RawMessage, error)
	Name() string
}

// ServiceConfig holds the service dependencies.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
	Metrics  *telemetry.FeedMetrics

	// Now defaults to time.Now.
	Now func() time.Time
}

// Service serves the weather feed.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  *telemetry.FeedMetrics
	now      func() time.Time
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger.With().Str("provider", cfg.Provider.Name()).Logger(),
		metrics:  cfg.Metrics,
		now:      now,
	}
}

// Current returns the latest nowcast rows for the grid cell containing the
// point, or FallbackRows for that cell. A point outside Domain is never sent
// upstream; it gets the fallback rows for Seoul City Hall with
// ErrOutOfRange as the cause.
func (s *Service) Current(ctx context.Context, lat, lng float64) feed.Result[json.RawMessage] {
	inDomain := Domain.Contains(lat, lng)
	if !inDomain {
		lat, lng = DefaultLat, DefaultLng
	}

	date, clock := BaseTime(s.now())
	q := NowcastQuery{BaseDate: date, BaseTime: clock, Grid: ToGrid(lat, lng)}

	src := feed.Source[json.RawMessage]{
		Name:     "weather",
		Message:  FallbackMessage,
		Fallback: func() []json.RawMessage { return feed.Raw(FallbackRows(q)...) },
		Logger:   s.logger,
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, func(ctx context.Context) ([]json.RawMessage, error) {
		if !inDomain {
			return nil, ErrOutOfRange
		}
		return s.provider.Nowcast(ctx, q)
	})
}

// FallbackRows is served when the nowcast is unavailable.
func FallbackRows(q NowcastQuery) []WeatherInfo {
	rows := []WeatherInfo{
		{Category: "T1H", ObsrValue: "15.0"},
		{Category: "REH", ObsrValue: "60"},
		{Category: "RN1", ObsrValue: "0"},
		{Category: "PTY", ObsrValue: "0"},
		{Category: "WSD", ObsrValue: "2.1"},
		{Category: "VEC", ObsrValue: "270"},
	}
	for i := range rows {
		rows[i].BaseDate = q.BaseDate
		rows[i].BaseTime = q.BaseTime
		rows[i].Nx = q.Grid.Nx
		rows[i].Ny = q.Grid.Ny
	}
	return rows
}
