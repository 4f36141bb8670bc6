// Package fuel serves national average fuel prices and nearby gas stations.
package fuel

import "strconv"

// OilPrice is one national average price row. Values are kept as the
// display strings the upstream uses ("1,650.5").
type OilPrice struct {
	ProdCd string `json:"prodcd"`
	ProdNm string `json:"prodnm"`
	Price  string `json:"price"`
	Diff   string `json:"diff"`
}

// GasStation is one station near a point. Distance is in metres.
type GasStation struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Distance float64 `json:"distance"`
	Gasoline string  `json:"gasoline,omitempty"`
	Diesel   string  `json:"diesel,omitempty"`
	LPG      string  `json:"lpg,omitempty"`
	Lat      string  `json:"lat"`
	Lng      string  `json:"lng"`
}

// Product codes used by Opinet.
const (
	ProductGasoline        = "B027"
	ProductDiesel          = "D047"
	ProductPremiumGasoline = "K015"
	ProductLPG             = "C004"
)

// Search radius bounds in metres.
const (
	DefaultRadius = 5000
	MaxRadius     = 5000
)

// StationQuery selects stations around a point. Lat and Lng are kept as
// the caller sent them so fallback rows can echo them back.
type StationQuery struct {
	Lat    string
	Lng    string
	Radius int
}

// ParseRadius reads a radius parameter, falling back to DefaultRadius for
// empty or invalid input and clamping to MaxRadius.
func ParseRadius(s string) int {
	r, err := strconv.Atoi(s)
	if err != nil || r <= 0 {
		return DefaultRadius
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}
