// Package weather serves the KMA ultra-short-term nowcast for a point.
package weather

import (
	"fmt"
	"math"
	"time"

	"github.com/mobileid/portal/internal/feed"
)

// ErrOutOfRange is the fallback cause for coordinates outside the KMA
// forecast domain.
var ErrOutOfRange = fmt.Errorf("coordinates outside the Korean forecast grid: %w", feed.ErrInvalidInput)

// WeatherInfo is one nowcast observation row. Category is a KMA code such
// as T1H (temperature) or REH (humidity).
type WeatherInfo struct {
	BaseDate  string `json:"baseDate"`
	BaseTime  string `json:"baseTime"`
	Category  string `json:"category"`
	ObsrValue string `json:"obsrValue"`
	Nx        int    `json:"nx"`
	Ny        int    `json:"ny"`
}

// Seoul City Hall, used when no point is given.
const (
	DefaultLat = 37.5665
	DefaultLng = 126.9780
)

// BoundingBox is a lat/lng rectangle.
type BoundingBox struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
}

// Contains reports whether the point lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Domain roughly covers the KMA 5 km grid.
var Domain = BoundingBox{MinLat: 32.0, MinLng: 123.0, MaxLat: 44.0, MaxLng: 132.0}

// Grid is a cell of the KMA 5 km Lambert conformal conic grid.
type Grid struct {
	Nx int
	Ny int
}

// KMA grid projection constants.
const (
	earthRadiusKm = 6371.00877
	gridKm        = 5.0
	stdLat1       = 30.0
	stdLat2       = 60.0
	originLng     = 126.0
	originLat     = 38.0
	originX       = 43
	originY       = 136
)

// ToGrid projects a point onto the KMA grid.
func ToGrid(lat, lng float64) Grid {
	const deg = math.Pi / 180.0

	re := earthRadiusKm / gridKm
	slat1 := stdLat1 * deg
	slat2 := stdLat2 * deg
	olng := originLng * deg
	olat := originLat * deg

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Pow(math.Tan(math.Pi*0.25+slat1*0.5), sn) * math.Cos(slat1) / sn
	ro := re * sf / math.Pow(math.Tan(math.Pi*0.25+olat*0.5), sn)

	ra := re * sf / math.Pow(math.Tan(math.Pi*0.25+lat*deg*0.5), sn)
	theta := lng*deg - olng
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2 * math.Pi
	}
	theta *= sn

	return Grid{
		Nx: int(math.Floor(ra*math.Sin(theta) + originX + 0.5)),
		Ny: int(math.Floor(ro - ra*math.Cos(theta) + originY + 0.5)),
	}
}

// KST is Korea Standard Time.
var KST = time.FixedZone("KST", 9*60*60)

// nowcastDelay is how long after the hour an observation is published.
const nowcastDelay = 40 * time.Minute

// BaseTime returns the newest published nowcast hour at t, formatted as
// the API expects (YYYYMMDD, HH00).
func BaseTime(t time.Time) (date, clock string) {
	b := t.In(KST).Add(-nowcastDelay).Truncate(time.Hour)
	return b.Format("20060102"), b.Format("1504")
}

// NowcastQuery selects one grid cell at one base time.
type NowcastQuery struct {
	BaseDate string
	BaseTime string
	Grid     Grid
}
