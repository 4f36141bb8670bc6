package traffic

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/telemetry"
)

// Fallback messages shown with the constant rows.
const (
	RouteFallbackMessage = "도로 소통 정보를 불러올 수 없어 참고용 데이터를 표시합니다."
	EventFallbackMessage = "도로 상황 정보를 불러올 수 없어 참고용 데이터를 표시합니다."
)

// RouteProvider returns raw expressway congestion rows.
type RouteProvider interface {
	Routes(ctx context.Context) ([]json.RawMessage, error)
	Name() string
}

// EventProvider returns raw road event rows.
type EventProvider interface {
	Events(ctx context.Context, q EventQuery) ([]json.RawMessage, error)
	Name() string
}

// ServiceConfig holds the service dependencies.
type ServiceConfig struct {
	Routes  RouteProvider
	Events  EventProvider
	Logger  zerolog.Logger
	Metrics *telemetry.FeedMetrics
}

// Service serves the traffic-info and traffic feeds.
type Service struct {
	routes  RouteProvider
	events  EventProvider
	logger  zerolog.Logger
	metrics *telemetry.FeedMetrics
}

// NewService creates a traffic service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		routes:  cfg.Routes,
		events:  cfg.Events,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Routes returns up to MaxRoutes mapped congestion rows, or FallbackRoutes.
func (s *Service) Routes(ctx context.Context) feed.Result[TrafficInfo] {
	src := feed.Source[TrafficInfo]{
		Name:     "traffic-info",
		Message:  RouteFallbackMessage,
		Fallback: FallbackRoutes,
		Logger:   s.logger.With().Str("provider", s.routes.Name()).Logger(),
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, func(ctx context.Context) ([]TrafficInfo, error) {
		rows, err := s.routes.Routes(ctx)
		if err != nil {
			return nil, err
		}
		return ToTrafficInfo(rows), nil
	})
}

// Events returns road events unchanged, or FallbackEvents.
func (s *Service) Events(ctx context.Context, q EventQuery) feed.Result[json.RawMessage] {
	q = q.Normalize()

	src := feed.Source[json.RawMessage]{
		Name:     "traffic",
		Message:  EventFallbackMessage,
		Fallback: func() []json.RawMessage { return feed.Raw(FallbackEvents()...) },
		Logger:   s.logger.With().Str("provider", s.events.Name()).Logger(),
		Metrics:  s.metrics,
	}
	return feed.Resolve(ctx, src, func(ctx context.Context) ([]json.RawMessage, error) {
		return s.events.Events(ctx, q)
	})
}

// FallbackRoutes is served when expressway congestion is unavailable.
func FallbackRoutes() []TrafficInfo {
	return []TrafficInfo{
		{RouteName: "경부고속도로", StartName: "서울", EndName: "부산", Congestion: "원활", Speed: "100"},
		{RouteName: "영동고속도로", StartName: "서울", EndName: "강릉", Congestion: "원활", Speed: "95"},
		{RouteName: "서해안고속도로", StartName: "서울", EndName: "목포", Congestion: "원활", Speed: "95"},
		{RouteName: "중부고속도로", StartName: "서울", EndName: "대전", Congestion: "원활", Speed: "90"},
	}
}

// FallbackEvents is served when road events are unavailable.
func FallbackEvents() []TrafficEvent {
	return []TrafficEvent{
		{
			Type:      "공사",
			RoadName:  "경부고속도로",
			Location:  "부산방향 기흥IC 부근",
			Message:   "차로 부분 통제 중입니다. 감속 운행하시기 바랍니다.",
			StartDate: "20240101000000",
		},
		{
			Type:      "기상",
			RoadName:  "영동고속도로",
			Location:  "강릉방향 대관령 구간",
			Message:   "안개로 인한 시야 제한이 예상됩니다.",
			StartDate: "20240101000000",
		},
	}
}
