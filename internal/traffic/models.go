// Package traffic serves expressway congestion and road event feeds.
package traffic

import (
	"encoding/json"
	"strconv"
)

// TrafficInfo is the congestion summary for one expressway section.
type TrafficInfo struct {
	RouteName  string `json:"routeName"`
	StartName  string `json:"startName"`
	EndName    string `json:"endName"`
	Congestion string `json:"congestion"`
	Speed      string `json:"speed"`
}

// TrafficEvent is one road event (works, accident, control) from MOLIT.
type TrafficEvent struct {
	Type      string `json:"type"`
	RoadName  string `json:"roadName"`
	Location  string `json:"location"`
	Message   string `json:"message"`
	StartDate string `json:"startDate"`
}

// MaxRoutes is how many expressway rows are returned.
const MaxRoutes = 20

// Defaults for route fields the upstream leaves empty.
const (
	UnknownRoute      = "정보 없음"
	DefaultCongestion = "원활"
	UnknownSpeed      = "-"
)

// ToTrafficInfo maps the first MaxRoutes upstream rows, filling empty fields
// with their defaults. Entries that are not JSON objects (null, numbers,
// strings) carry no route and are skipped rather than failing the whole
// list; they do not count toward MaxRoutes.
func ToTrafficInfo(rows []json.RawMessage) []TrafficInfo {
	out := make([]TrafficInfo, 0, min(len(rows), MaxRoutes))
	for _, raw := range rows {
		if len(out) == MaxRoutes {
			break
		}
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil || item == nil {
			continue
		}
		out = append(out, TrafficInfo{
			RouteName:  field(item, "routeName", UnknownRoute),
			StartName:  field(item, "startName", ""),
			EndName:    field(item, "endName", ""),
			Congestion: field(item, "congestion", DefaultCongestion),
			Speed:      field(item, "speed", UnknownSpeed),
		})
	}
	return out
}

// field returns item[key] as a string, or def when it is absent, empty,
// zero or false.
func field(item map[string]any, key, def string) string {
	switch v := item[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case bool:
		if v {
			return "true"
		}
	}
	return def
}

// EventQuery pages through road events.
type EventQuery struct {
	Type      string
	NumOfRows int
	PageNo    int
}

// Event query defaults and bounds.
const (
	DefaultEventType = "all"
	DefaultNumOfRows = 10
	MaxNumOfRows     = 100
	DefaultPageNo    = 1
)

// Normalize fills defaults and clamps the page size.
func (q EventQuery) Normalize() EventQuery {
	if q.Type == "" {
		q.Type = DefaultEventType
	}
	if q.NumOfRows <= 0 {
		q.NumOfRows = DefaultNumOfRows
	}
	if q.NumOfRows > MaxNumOfRows {
		q.NumOfRows = MaxNumOfRows
	}
	if q.PageNo <= 0 {
		q.PageNo = DefaultPageNo
	}
	return q
}
