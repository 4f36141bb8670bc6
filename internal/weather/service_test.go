package weather_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/weather"
	"github.com/mobileid/portal/internal/weather/kma"
)

type mockProvider struct {
	rows []json.RawMessage
	err  error
	got  weather.NowcastQuery
}

func (m *mockProvider) Nowcast(_ context.Context, q weather.NowcastQuery) ([]json.RawMessage, error) {
	m.got = q
	return m.rows, m.err
}

func (m *mockProvider) Name() string { return "mock" }

func fixedNow() time.Time {
	return time.Date(2024, 10, 19, 14, 50, 0, 0, weather.KST)
}

func TestService_Current(t *testing.T) {
	p := &mockProvider{rows: []json.RawMessage{
		json.RawMessage(`{"baseDate":"20241019","baseTime":"1400","category":"T1H","nx":60,"ny":127,"obsrValue":"18.2"}`),
	}}
	svc := weather.NewService(weather.ServiceConfig{Provider: p, Logger: zerolog.Nop(), Now: fixedNow})

	res := svc.Current(context.Background(), weather.DefaultLat, weather.DefaultLng)

	assert.False(t, res.Fallback)
	assert.Equal(t, p.rows, res.Items)
	assert.Equal(t, weather.NowcastQuery{BaseDate: "20241019", BaseTime: "1400", Grid: weather.Grid{Nx: 60, Ny: 127}}, p.got)
}

func TestService_CurrentFallback(t *testing.T) {
	p := &mockProvider{err: errors.New("upstream returned 500")}
	svc := weather.NewService(weather.ServiceConfig{Provider: p, Logger: zerolog.Nop(), Now: fixedNow})

	res := svc.Current(context.Background(), 35.1796, 129.0756)

	require.True(t, res.Fallback)
	assert.Equal(t, weather.FallbackMessage, res.Message)
	require.NotEmpty(t, res.Items)

	var first weather.WeatherInfo
	require.NoError(t, json.Unmarshal(res.Items[0], &first))
	assert.Equal(t, "T1H", first.Category)
	assert.Equal(t, "20241019", first.BaseDate)
	assert.Equal(t, "1400", first.BaseTime)
	assert.Equal(t, 98, first.Nx)
	assert.Equal(t, 76, first.Ny)
}

func TestService_CurrentOutOfRange(t *testing.T) {
	p := &mockProvider{}
	svc := weather.NewService(weather.ServiceConfig{Provider: p, Logger: zerolog.Nop(), Now: fixedNow})

	res := svc.Current(context.Background(), 52.37, 4.89)

	assert.Zero(t, p.got, "upstream must not be called")
	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, weather.ErrOutOfRange)
	assert.ErrorIs(t, res.Err, feed.ErrInvalidInput)

	var first weather.WeatherInfo
	require.NoError(t, json.Unmarshal(res.Items[0], &first))
	assert.Equal(t, 60, first.Nx)
	assert.Equal(t, 127, first.Ny)
}

func TestService_CurrentItemsWithoutItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},"body":{"items":{}}}}`))
	}))
	defer server.Close()

	svc := weather.NewService(weather.ServiceConfig{
		Provider: kma.NewClient(kma.ClientConfig{
			APIKey:     "kma-key",
			BaseURL:    server.URL,
			HTTPClient: resilience.NewClient(resilience.DefaultClientConfig(t.Name())),
		}),
		Logger: zerolog.Nop(),
		Now:    fixedNow,
	})

	res := svc.Current(context.Background(), weather.DefaultLat, weather.DefaultLng)

	require.True(t, res.Fallback)
	assert.ErrorIs(t, res.Err, feed.ErrUnexpectedShape)
	assert.Equal(t, weather.FallbackMessage, res.Message)
	assert.Len(t, res.Items, len(weather.FallbackRows(weather.NowcastQuery{})))
}
