package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mobileid/portal/internal/apiclient"
	"github.com/mobileid/portal/internal/directory"
	"github.com/mobileid/portal/internal/suggestion"
)

// Name identifies a view.
type Name string

// View names.
const (
	Main        Name = "main"
	Community   Name = "community"
	Report      Name = "report"
	OilPrice    Name = "oil-price"
	Stations    Name = "stations"
	TrafficInfo Name = "traffic-info"
	Traffic     Name = "traffic"
	Weather     Name = "weather"
	AirQuality  Name = "air-quality"
	Parking     Name = "parking"
)

// ErrUnknownView is returned by For for a name outside Names.
var ErrUnknownView = errors.New("unknown view")

// Names lists every view in menu order.
func Names() []Name {
	return []Name{Main, Community, Report, OilPrice, Stations, TrafficInfo, Traffic, Weather, AirQuality, Parking}
}

// Source is the API surface the views read from. *apiclient.Client
// implements it.
type Source interface {
	Menu(ctx context.Context) ([]directory.IssuanceLink, error)
	CommunityPosts(ctx context.Context) ([]directory.CommunityPost, error)
	Suggestions(ctx context.Context) ([]suggestion.Suggestion, error)
	OilPrices(ctx context.Context) (*apiclient.Feed[apiclient.OilPrice], error)
	NearbyStations(ctx context.Context, lat, lng string, radius int) (*apiclient.Feed[apiclient.GasStation], error)
	TrafficInfo(ctx context.Context) (*apiclient.Feed[apiclient.TrafficInfo], error)
	TrafficEvents(ctx context.Context, eventType string, numOfRows, pageNo int) (*apiclient.Feed[apiclient.TrafficEvent], error)
	Weather(ctx context.Context, lat, lng string) (*apiclient.Feed[apiclient.Observation], error)
	AirQuality(ctx context.Context, sido string) (*apiclient.Feed[apiclient.AirReading], error)
	Parking(ctx context.Context, limit int) (*apiclient.Feed[apiclient.ParkingLot], error)
}

// Options are the per-view parameters.
type Options struct {
	Lat    string
	Lng    string
	Radius int
	Sido   string
	Limit  int
}

// For builds the named view over src.
func For(name Name, src Source, opts Options) (*View, error) {
	switch name {
	case Main:
		return New(name, "모바일 신분증 발급 안내", func(ctx context.Context) (Content, error) {
			cards, err := src.Menu(ctx)
			return listContent(cards, err, cardRow)
		}), nil
	case Community:
		return New(name, "사용처 공유", func(ctx context.Context) (Content, error) {
			posts, err := src.CommunityPosts(ctx)
			return listContent(posts, err, postRow)
		}), nil
	case Report:
		return New(name, "새로운 기능 제안", func(ctx context.Context) (Content, error) {
			items, err := src.Suggestions(ctx)
			return listContent(items, err, suggestionRow)
		}), nil
	case OilPrice:
		return New(name, "전국 평균 유가", func(ctx context.Context) (Content, error) {
			return feedContent(src.OilPrices(ctx))(oilRow)
		}), nil
	case Stations:
		if opts.Lat == "" || opts.Lng == "" {
			return nil, fmt.Errorf("%s view needs a latitude and longitude", name)
		}
		return New(name, "주변 주유소", func(ctx context.Context) (Content, error) {
			return feedContent(src.NearbyStations(ctx, opts.Lat, opts.Lng, opts.Radius))(stationRow)
		}), nil
	case TrafficInfo:
		return New(name, "고속도로 소통 정보", func(ctx context.Context) (Content, error) {
			return feedContent(src.TrafficInfo(ctx))(routeRow)
		}), nil
	case Traffic:
		return New(name, "도로 돌발 상황", func(ctx context.Context) (Content, error) {
			return feedContent(src.TrafficEvents(ctx, "", 0, 0))(eventRow)
		}), nil
	case Weather:
		return New(name, "현재 날씨", func(ctx context.Context) (Content, error) {
			return feedContent(src.Weather(ctx, opts.Lat, opts.Lng))(observationRow)
		}), nil
	case AirQuality:
		return New(name, "대기질", func(ctx context.Context) (Content, error) {
			return feedContent(src.AirQuality(ctx, opts.Sido))(airRow)
		}), nil
	case Parking:
		return New(name, "공영 주차장", func(ctx context.Context) (Content, error) {
			return feedContent(src.Parking(ctx, opts.Limit))(parkingRow)
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
}

func listContent[T any](items []T, err error, row func(T) Row) (Content, error) {
	if err != nil {
		return Content{}, err
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row(it))
	}
	return Content{Rows: rows}, nil
}

// feedContent is curried so each case can pass the client call's two
// results straight through.
func feedContent[T any](f *apiclient.Feed[T], err error) func(func(T) Row) (Content, error) {
	return func(row func(T) Row) (Content, error) {
		if err != nil {
			return Content{}, err
		}
		content, err := listContent(f.Data, nil, row)
		content.Fallback = f.Fallback
		content.Notice = f.Message
		return content, err
	}
}

func cardRow(c directory.IssuanceLink) Row {
	if c.Kind == directory.KindNav {
		return Row{Title: c.Title, Detail: c.Label + " (" + c.View + ")"}
	}
	return Row{Title: c.Title, Detail: c.Label + " " + c.Href}
}

func postRow(p directory.CommunityPost) Row {
	return Row{Title: p.Title, Detail: "작성자: " + p.Author + " | " + p.Date}
}

func suggestionRow(s suggestion.Suggestion) Row {
	return Row{Title: "[" + s.Type + "] " + s.Details, Detail: s.CreatedAt.Format("2006-01-02 15:04")}
}

func oilRow(p apiclient.OilPrice) Row {
	return Row{Title: p.ProdNm.String(), Detail: p.Price.String() + "원 (" + p.Diff.String() + ")"}
}

func stationRow(s apiclient.GasStation) Row {
	parts := []string{}
	if s.Gasoline != "" {
		parts = append(parts, "휘발유 "+s.Gasoline.String())
	}
	if s.Diesel != "" {
		parts = append(parts, "경유 "+s.Diesel.String())
	}
	if s.LPG != "" {
		parts = append(parts, "LPG "+s.LPG.String())
	}
	if s.Distance != "" {
		parts = append(parts, s.Distance.String()+"m")
	}
	return Row{Title: s.Name.String(), Detail: strings.Join(parts, ", ")}
}

func routeRow(r apiclient.TrafficInfo) Row {
	return Row{
		Title:  r.RouteName.String(),
		Detail: fmt.Sprintf("%s→%s %s %skm/h", r.StartName, r.EndName, r.Congestion, r.Speed),
	}
}

func eventRow(e apiclient.TrafficEvent) Row {
	title := strings.TrimSpace(e.Type.String() + " " + e.RoadName.String())
	detail := e.Message.String()
	if e.Location != "" {
		detail = e.Location.String() + " " + detail
	}
	return Row{Title: title, Detail: strings.TrimSpace(detail)}
}

// weatherLabels names the KMA nowcast categories.
var weatherLabels = map[string]string{
	"T1H": "기온(℃)",
	"RN1": "1시간 강수량(mm)",
	"REH": "습도(%)",
	"PTY": "강수형태",
	"WSD": "풍속(m/s)",
	"VEC": "풍향(deg)",
	"UUU": "동서바람성분(m/s)",
	"VVV": "남북바람성분(m/s)",
}

func observationRow(o apiclient.Observation) Row {
	label, ok := weatherLabels[o.Category.String()]
	if !ok {
		label = o.Category.String()
	}
	return Row{Title: label, Detail: o.ObsrValue.String()}
}

func airRow(a apiclient.AirReading) Row {
	return Row{
		Title:  a.StationName.String(),
		Detail: fmt.Sprintf("PM10 %s, PM2.5 %s, 등급 %s (%s)", a.PM10Value, a.PM25Value, a.KhaiGrade, a.DataTime),
	}
}

func parkingRow(p apiclient.ParkingLot) Row {
	detail := p.Address.String()
	capacity, okCap := p.Capacity.Float()
	parked, okParked := p.Parked.Float()
	if okCap && okParked {
		free := max(int(capacity-parked), 0)
		detail = fmt.Sprintf("%s (잔여 %d/%d)", detail, free, int(capacity))
	}
	return Row{Title: p.Name.String(), Detail: strings.TrimSpace(detail)}
}
