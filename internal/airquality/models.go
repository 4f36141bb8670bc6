// Package airquality serves real-time air quality readings per province.
package airquality

import (
	"fmt"
	"slices"

	"github.com/mobileid/portal/internal/feed"
)

// ErrUnknownSido is the fallback cause for a province name AirKorea does
// not accept.
var ErrUnknownSido = fmt.Errorf("unknown sido name: %w", feed.ErrInvalidInput)

// HealthInfo is one station reading. Values stay strings because the
// upstream reports "-" for missing measurements.
type HealthInfo struct {
	StationName string `json:"stationName"`
	SidoName    string `json:"sidoName"`
	DataTime    string `json:"dataTime"`
	PM10Value   string `json:"pm10Value"`
	PM25Value   string `json:"pm25Value"`
	O3Value     string `json:"o3Value"`
	NO2Value    string `json:"no2Value"`
	KhaiValue   string `json:"khaiValue"`
	KhaiGrade   string `json:"khaiGrade"`
}

// DefaultSido is used when no province is given.
const DefaultSido = "서울"

// Sidos lists the province names accepted by AirKorea.
var Sidos = []string{
	"전국", "서울", "부산", "대구", "인천", "광주", "대전", "울산", "경기",
	"강원", "충북", "충남", "전북", "전남", "경북", "경남", "제주", "세종",
}

// ValidSido reports whether name is an accepted province.
func ValidSido(name string) bool {
	return slices.Contains(Sidos, name)
}

// Grade is the Comprehensive Air-quality Index band.
type Grade string

// CAI bands.
const (
	GradeGood     Grade = "좋음"
	GradeModerate Grade = "보통"
	GradeBad      Grade = "나쁨"
	GradeVeryBad  Grade = "매우나쁨"
	GradeUnknown  Grade = "정보 없음"
)

// GradeLabel maps a khaiGrade code ("1".."4") to its band.
func GradeLabel(code string) Grade {
	switch code {
	case "1":
		return GradeGood
	case "2":
		return GradeModerate
	case "3":
		return GradeBad
	case "4":
		return GradeVeryBad
	default:
		return GradeUnknown
	}
}
