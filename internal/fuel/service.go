package fuel

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/telemetry"
)

// Fallback messages shown with the constant rows.
const (
	PriceFallbackMessage   = "실시간 데이터를 불러올 수 없어 참고용 데이터를 표시합니다."
	StationFallbackMessage = "주유소 정보를 불러올 수 없어 참고용 데이터를 표시합니다."
)

// Provider fetches fuel data. Rows are returned exactly as the upstream sent them.
type Provider interface {
	AveragePrices(ctx context.Context) ([]json.RawMessage, error)
	NearbyStations(ctx context.Context, q StationQuery) ([]json.RawMessage, error)
	Name() string
}

// ServiceConfig holds the service dependencies.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger
	Metrics  *telemetry.FeedMetrics
}

// Service serves the oil-price and nearby-stations feeds.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	metrics  *telemetry.FeedMetrics
}

// NewService creates a fuel service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger.With().Str("provider", cfg.Provider.Name()).Logger(),
		metrics:  cfg.Metrics,
	}
}

// OilPrices returns the national average prices, or FallbackPrices.
func (s *Service) OilPrices(ctx context.Context) feed.Result[json.RawMessage] {
	src := feed.Source[json.RawMessage]{
		Name:     "oil-price",
		Message:  PriceFallbackMessage,
		Fallback: func() []json.RawMessage { return feed.Raw(FallbackPrices()...) },
		Logger:   s.logger,
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, s.provider.AveragePrices)
}

// NearbyStations returns stations around q, or FallbackStations echoing
// q's coordinates.
func (s *Service) NearbyStations(ctx context.Context, q StationQuery) feed.Result[json.RawMessage] {
	if q.Radius <= 0 {
		q.Radius = DefaultRadius
	}

	src := feed.Source[json.RawMessage]{
		Name:     "nearby-stations",
		Message:  StationFallbackMessage,
		Fallback: func() []json.RawMessage { return feed.Raw(FallbackStations(q.Lat, q.Lng)...) },
		Logger:   s.logger,
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.provider.NearbyStations(ctx, q)
	})
}

// FallbackPrices is served when average prices are unavailable.
func FallbackPrices() []OilPrice {
	return []OilPrice{
		{ProdCd: ProductGasoline, ProdNm: "휘발유", Price: "1,650.5", Diff: "10.2"},
		{ProdCd: ProductDiesel, ProdNm: "경유", Price: "1,520.3", Diff: "-5.4"},
		{ProdCd: ProductPremiumGasoline, ProdNm: "고급휘발유", Price: "1,950.7", Diff: "15.1"},
		{ProdCd: ProductLPG, ProdNm: "LPG", Price: "950.2", Diff: "3.5"},
	}
}

// FallbackStations is served when nearby stations are unavailable.
func FallbackStations(lat, lng string) []GasStation {
	return []GasStation{
		{
			ID: "1", Name: "GS칼텍스 주유소", Address: "현재 위치 근처", Distance: 500,
			Gasoline: "1,645", Diesel: "1,515", LPG: "945", Lat: lat, Lng: lng,
		},
		{
			ID: "2", Name: "SK에너지 주유소", Address: "현재 위치 근처", Distance: 800,
			Gasoline: "1,650", Diesel: "1,520", LPG: "950", Lat: lat, Lng: lng,
		},
	}
}
