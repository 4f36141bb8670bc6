package apiclient

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Text is a display value. Upstreams are inconsistent about quoting, so it
// accepts a JSON string, number or boolean. null decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(data)
	}
	return nil
}

// String returns the value.
func (t Text) String() string { return string(t) }

// Float parses the value, ignoring thousands separators. ok is false when
// it is not a number.
func (t Text) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(string(t), ",", ""), 64)
	return f, err == nil
}

// Feed is the envelope every feed endpoint answers with.
type Feed[T any] struct {
	Success   bool      `json:"success"`
	Data      []T       `json:"data"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
	Fallback  bool      `json:"fallback"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
}

// List is the envelope of the static content endpoints.
type List[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
	Count   int  `json:"count"`
}

// fields decodes a row object for the types that accept more than one key
// spelling.
type fields map[string]Text

func (f fields) pick(keys ...string) Text {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

// OilPrice is one national average price. Live rows use Opinet's upper-case
// keys and fallback rows use lower-case ones; both decode.
type OilPrice struct {
	ProdCd Text `json:"prodcd"`
	ProdNm Text `json:"prodnm"`
	Price  Text `json:"price"`
	Diff   Text `json:"diff"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *OilPrice) UnmarshalJSON(data []byte) error {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = OilPrice{
		ProdCd: f.pick("PRODCD", "prodcd"),
		ProdNm: f.pick("PRODNM", "prodnm"),
		Price:  f.pick("PRICE", "price"),
		Diff:   f.pick("DIFF", "diff"),
	}
	return nil
}

// GasStation is one nearby station, from either a live Opinet row or a
// fallback row.
type GasStation struct {
	ID       Text `json:"id"`
	Name     Text `json:"name"`
	Address  Text `json:"address"`
	Distance Text `json:"distance"`
	Gasoline Text `json:"gasoline"`
	Diesel   Text `json:"diesel"`
	LPG      Text `json:"lpg"`
	Lat      Text `json:"lat"`
	Lng      Text `json:"lng"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *GasStation) UnmarshalJSON(data []byte) error {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = GasStation{
		ID:       f.pick("UNI_ID", "id"),
		Name:     f.pick("OS_NM", "name"),
		Address:  f.pick("NEW_ADR", "VAN_ADR", "address"),
		Distance: f.pick("DISTANCE", "distance"),
		Gasoline: f.pick("PRICE", "gasoline"),
		Diesel:   f.pick("diesel"),
		LPG:      f.pick("lpg"),
		Lat:      f.pick("GIS_Y_COOR", "lat"),
		Lng:      f.pick("GIS_X_COOR", "lng"),
	}
	return nil
}

// TrafficInfo is an expressway section summary.
type TrafficInfo struct {
	RouteName  Text `json:"routeName"`
	StartName  Text `json:"startName"`
	EndName    Text `json:"endName"`
	Congestion Text `json:"congestion"`
	Speed      Text `json:"speed"`
}

// TrafficEvent is a road event.
type TrafficEvent struct {
	Type      Text `json:"type"`
	RoadName  Text `json:"roadName"`
	Location  Text `json:"location"`
	Message   Text `json:"message"`
	StartDate Text `json:"startDate"`
}

// Observation is one weather nowcast value.
type Observation struct {
	BaseDate  Text `json:"baseDate"`
	BaseTime  Text `json:"baseTime"`
	Category  Text `json:"category"`
	ObsrValue Text `json:"obsrValue"`
}

// AirReading is one air quality station reading.
type AirReading struct {
	StationName Text `json:"stationName"`
	SidoName    Text `json:"sidoName"`
	DataTime    Text `json:"dataTime"`
	PM10Value   Text `json:"pm10Value"`
	PM25Value   Text `json:"pm25Value"`
	KhaiGrade   Text `json:"khaiGrade"`
}

// ParkingLot is one public parking lot.
type ParkingLot struct {
	Code     Text `json:"PKLT_CD"`
	Name     Text `json:"PKLT_NM"`
	Address  Text `json:"ADDR"`
	Capacity Text `json:"TPKCT"`
	Parked   Text `json:"NOW_PRK_VHCL_CNT"`
}
