// Package handler provides HTTP handlers for the portal API.
package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/mobileid/portal/internal/airquality"
	"github.com/mobileid/portal/internal/api/response"
	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/fuel"
	"github.com/mobileid/portal/internal/parking"
	"github.com/mobileid/portal/internal/traffic"
	"github.com/mobileid/portal/internal/weather"
)

// MissingCoordinatesMessage is returned when nearby-stations lacks lat or lng.
const MissingCoordinatesMessage = "위도(lat)와 경도(lng) 파라미터가 필요합니다."

// FeedHandlerConfig holds the feed services.
type FeedHandlerConfig struct {
	Fuel       *fuel.Service
	Traffic    *traffic.Service
	Weather    *weather.Service
	AirQuality *airquality.Service
	Parking    *parking.Service

	// ExposeDetails adds the upstream error text to fallback envelopes.
	ExposeDetails bool
}

// FeedHandler serves the upstream-backed data feeds. Every feed answers 200
// with either live rows or its fallback rows.
type FeedHandler struct {
	fuel       *fuel.Service
	traffic    *traffic.Service
	weather    *weather.Service
	airQuality *airquality.Service
	parking    *parking.Service
	details    bool
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(cfg FeedHandlerConfig) *FeedHandler {
	return &FeedHandler{
		fuel:       cfg.Fuel,
		traffic:    cfg.Traffic,
		weather:    cfg.Weather,
		airQuality: cfg.AirQuality,
		parking:    cfg.Parking,
		details:    cfg.ExposeDetails,
	}
}

func writeFeed[T any](w http.ResponseWriter, r *http.Request, res feed.Result[T], details bool) {
	response.JSON(w, r, http.StatusOK, feed.NewEnvelope(res, details))
}

// OilPrice handles GET /api/oil-price and its /api/opinet alias.
func (h *FeedHandler) OilPrice(w http.ResponseWriter, r *http.Request) {
	writeFeed(w, r, h.fuel.OilPrices(r.Context()), h.details)
}

// NearbyStations handles GET /api/nearby-stations.
func (h *FeedHandler) NearbyStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat := strings.TrimSpace(q.Get("lat"))
	lng := strings.TrimSpace(q.Get("lng"))
	if lat == "" || lng == "" {
		response.MissingParams(w, r, MissingCoordinatesMessage)
		return
	}

	res := h.fuel.NearbyStations(r.Context(), fuel.StationQuery{
		Lat:    lat,
		Lng:    lng,
		Radius: fuel.ParseRadius(q.Get("radius")),
	})
	writeFeed(w, r, res, h.details)
}

// TrafficInfo handles GET /api/traffic-info.
func (h *FeedHandler) TrafficInfo(w http.ResponseWriter, r *http.Request) {
	writeFeed(w, r, h.traffic.Routes(r.Context()), h.details)
}

// TrafficEvents handles GET /api/traffic.
func (h *FeedHandler) TrafficEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	numOfRows, _ := strconv.Atoi(q.Get("numOfRows"))
	pageNo, _ := strconv.Atoi(q.Get("pageNo"))

	query := traffic.EventQuery{
		Type:      strings.TrimSpace(q.Get("type")),
		NumOfRows: numOfRows,
		PageNo:    pageNo,
	}.Normalize()

	writeFeed(w, r, h.traffic.Events(r.Context(), query), h.details)
}

// Weather handles GET /api/weather. A missing or non-numeric coordinate
// falls back to Seoul City Hall.
func (h *FeedHandler) Weather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat := parseCoord(q.Get("lat"), weather.DefaultLat)
	lng := parseCoord(q.Get("lng"), weather.DefaultLng)

	writeFeed(w, r, h.weather.Current(r.Context(), lat, lng), h.details)
}

func parseCoord(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// AirQuality handles GET /api/air-quality.
func (h *FeedHandler) AirQuality(w http.ResponseWriter, r *http.Request) {
	sido := strings.TrimSpace(r.URL.Query().Get("sido"))
	writeFeed(w, r, h.airQuality.Readings(r.Context(), sido), h.details)
}

// Parking handles GET /api/parking.
func (h *FeedHandler) Parking(w http.ResponseWriter, r *http.Request) {
	limit := parking.ParseLimit(r.URL.Query().Get("limit"))
	writeFeed(w, r, h.parking.Lots(r.Context(), limit), h.details)
}
