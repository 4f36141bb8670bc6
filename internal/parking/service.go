package parking

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/telemetry"
)

// FallbackMessage is shown with the constant rows.
const FallbackMessage = "주차장 정보를 불러올 수 없어 참고용 데이터를 표시합니다."

// Provider returns raw parking lot rows.
type Provider interface {
	Lots(ctx context.Context, limit int) ([]json.RawMessage, error)
	Name() string
}

// ServiceConfig holds the service dependencies.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
	Metrics  *telemetry.FeedMetrics
}

// Service serves the parking feed.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  *telemetry.FeedMetrics
}

// NewService creates a parking service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger.With().Str("provider", cfg.Provider.Name()).Logger(),
		metrics:  cfg.Metrics,
	}
}

// Lots returns up to limit lots, or FallbackLots.
func (s *Service) Lots(ctx context.Context, limit int) feed.Result[json.RawMessage] {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	src := feed.Source[json.RawMessage]{
		Name:     "parking",
		Message:  FallbackMessage,
		Fallback: func() []json.RawMessage { return feed.Raw(FallbackLots()...) },
		Logger:   s.logger,
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, func(ctx context.Context) ([]json.RawMessage, error) {
		rows, err := s.provider.Lots(ctx, limit)
		if len(rows) > limit {
			rows = rows[:limit]
		}
		return rows, err
	})
}

// FallbackLots is served when lot data is unavailable.
func FallbackLots() []ParkingLot {
	return []ParkingLot{
		{
			Code: "171721", Name: "세종로 공영주차장(시)", Address: "종로구 세종로 80-1",
			Capacity: 1260, Parked: 830, Lat: 37.57340, Lng: 126.97588,
		},
		{
			Code: "1010089", Name: "서울시청 주차장(시)", Address: "중구 태평로1가 31",
			Capacity: 120, Parked: 95, Lat: 37.56650, Lng: 126.97800,
		},
		{
			Code: "1033125", Name: "남산공원 주차장(시)", Address: "중구 예장동 8-1",
			Capacity: 90, Parked: 40, Lat: 37.55812, Lng: 126.98755,
		},
	}
}
