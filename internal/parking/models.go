// Package parking serves real-time public parking lot occupancy in Seoul.
package parking

import "strconv"

// ParkingLot is one lot row as published by the Seoul open data plaza.
type ParkingLot struct {
	Code     string  `json:"PKLT_CD"`
	Name     string  `json:"PKLT_NM"`
	Address  string  `json:"ADDR"`
	Capacity float64 `json:"TPKCT"`
	Parked   float64 `json:"NOW_PRK_VHCL_CNT"`
	Lat      float64 `json:"LAT"`
	Lng      float64 `json:"LOT"`
}

// Available returns the free spaces, never below zero.
func (p ParkingLot) Available() int {
	free := int(p.Capacity - p.Parked)
	if free < 0 {
		return 0
	}
	return free
}

// Row limits.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParseLimit reads a limit parameter, using DefaultLimit for empty or
// invalid input and clamping to MaxLimit.
func ParseLimit(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}
