package fuel_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/fuel"
)

type mockProvider struct {
	prices    []json.RawMessage
	stations  []json.RawMessage
	err       error
	lastQuery fuel.StationQuery
}

func (m *mockProvider) AveragePrices(context.Context) ([]json.RawMessage, error) {
	return m.prices, m.err
}

func (m *mockProvider) NearbyStations(_ context.Context, q fuel.StationQuery) ([]json.RawMessage, error) {
	m.lastQuery = q
	return m.stations, m.err
}

func (m *mockProvider) Name() string { return "mock" }

func newService(p fuel.Provider) *fuel.Service {
	return fuel.NewService(fuel.ServiceConfig{Provider: p, Logger: zerolog.Nop()})
}

func TestOilPrices_PassesUpstreamRowsThrough(t *testing.T) {
	upstream := []json.RawMessage{json.RawMessage(`{"PRODCD":"B027","PRICE":"1663.45"}`)}
	svc := newService(&mockProvider{prices: upstream})

	res := svc.OilPrices(context.Background())

	assert.False(t, res.Fallback)
	assert.Equal(t, upstream, res.Items)
}

func TestOilPrices_Fallback(t *testing.T) {
	svc := newService(&mockProvider{err: feed.ErrUnexpectedShape})

	res := svc.OilPrices(context.Background())

	require.True(t, res.Fallback)
	assert.Equal(t, fuel.PriceFallbackMessage, res.Message)
	require.Len(t, res.Items, 4)

	var first fuel.OilPrice
	require.NoError(t, json.Unmarshal(res.Items[0], &first))
	assert.Equal(t, fuel.OilPrice{ProdCd: "B027", ProdNm: "휘발유", Price: "1,650.5", Diff: "10.2"}, first)

	var last fuel.OilPrice
	require.NoError(t, json.Unmarshal(res.Items[3], &last))
	assert.Equal(t, "C004", last.ProdCd)
	assert.Equal(t, "950.2", last.Price)
}

func TestNearbyStations_DefaultRadius(t *testing.T) {
	p := &mockProvider{stations: []json.RawMessage{}}
	svc := newService(p)

	res := svc.NearbyStations(context.Background(), fuel.StationQuery{Lat: "37.5", Lng: "127.0"})

	assert.False(t, res.Fallback)
	assert.Equal(t, fuel.DefaultRadius, p.lastQuery.Radius)
}

func TestNearbyStations_FallbackEchoesCoordinates(t *testing.T) {
	svc := newService(&mockProvider{err: errors.New("timeout")})

	res := svc.NearbyStations(context.Background(), fuel.StationQuery{Lat: "35.1796", Lng: "129.0756", Radius: 1000})

	require.True(t, res.Fallback)
	assert.Equal(t, fuel.StationFallbackMessage, res.Message)
	require.Len(t, res.Items, 2)

	for _, raw := range res.Items {
		var st map[string]any
		require.NoError(t, json.Unmarshal(raw, &st))
		assert.Equal(t, "35.1796", st["lat"])
		assert.Equal(t, "129.0756", st["lng"])
	}

	var gs fuel.GasStation
	require.NoError(t, json.Unmarshal(res.Items[0], &gs))
	assert.Equal(t, "GS칼텍스 주유소", gs.Name)
	assert.Equal(t, float64(500), gs.Distance)
	assert.Equal(t, "1,645", gs.Gasoline)
}

func TestParseRadius(t *testing.T) {
	tests := map[string]int{
		"":      5000,
		"abc":   5000,
		"-1":    5000,
		"0":     5000,
		"1500":  1500,
		"99999": 5000,
	}
	for in, want := range tests {
		assert.Equal(t, want, fuel.ParseRadius(in), "input %q", in)
	}
}
