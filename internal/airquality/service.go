package airquality

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/telemetry"
)

// FallbackMessage is shown with the constant rows.
const FallbackMessage = "대기질 정보를 불러올 수 없어 참고용 데이터를 표시합니다."

// Provider returns raw station readings for one province.
type Provider interface {
	Readings(ctx context.Context, sido string) ([]json.RawMessage, error)
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

// Service serves the air-quality feed.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  *telemetry.FeedMetrics
	now      func() time.Time
}

// NewService creates an air quality service.
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

// Readings returns the current station readings for sido (DefaultSido when
// empty), or FallbackRows. An unknown sido is never sent upstream; it gets
// the DefaultSido fallback rows with ErrUnknownSido as the cause.
func (s *Service) Readings(ctx context.Context, sido string) feed.Result[json.RawMessage] {
	if sido == "" {
		sido = DefaultSido
	}
	known := ValidSido(sido)
	if !known {
		sido = DefaultSido
	}

	src := feed.Source[json.RawMessage]{
		Name:     "air-quality",
		Message:  FallbackMessage,
		Fallback: func() []json.RawMessage { return feed.Raw(FallbackRows(sido, s.now())...) },
		Logger:   s.logger,
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, func(ctx context.Context) ([]json.RawMessage, error) {
		if !known {
			return nil, ErrUnknownSido
		}
		return s.provider.Readings(ctx, sido)
	})
}

// FallbackRows is served when readings are unavailable.
func FallbackRows(sido string, at time.Time) []HealthInfo {
	dataTime := at.In(kst).Truncate(time.Hour).Format("2006-01-02 15:04")
	return []HealthInfo{
		{
			StationName: "도심", SidoName: sido, DataTime: dataTime,
			PM10Value: "35", PM25Value: "18", O3Value: "0.030", NO2Value: "0.022",
			KhaiValue: "65", KhaiGrade: "2",
		},
		{
			StationName: "외곽", SidoName: sido, DataTime: dataTime,
			PM10Value: "28", PM25Value: "14", O3Value: "0.034", NO2Value: "0.015",
			KhaiValue: "58", KhaiGrade: "2",
		},
	}
}

var kst = time.FixedZone("KST", 9*60*60)
