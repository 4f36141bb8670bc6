package traffic_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/traffic"
)

type mockRoutes struct {
	rows []json.RawMessage
	err  error
}

func (m *mockRoutes) Routes(context.Context) ([]json.RawMessage, error) { return m.rows, m.err }
func (m *mockRoutes) Name() string { return "routes" }

type mockEvents struct {
	rows []json.RawMessage
	err  error
	got  traffic.EventQuery
}

func (m *mockEvents) Events(_ context.Context, q traffic.EventQuery) ([]json.RawMessage, error) {
	m.got = q
	return m.rows, m.err
}
func (m *mockEvents) Name() string { return "events" }

func TestService_Routes(t *testing.T) {
	svc := traffic.NewService(traffic.ServiceConfig{
		Routes: &mockRoutes{rows: []json.RawMessage{json.RawMessage(`{"routeName":"경부선","speed":"88"}`)}},
		Events: &mockEvents{},
		Logger: zerolog.Nop(),
	})

	res := svc.Routes(context.Background())

	assert.False(t, res.Fallback)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "경부선", res.Items[0].RouteName)
	assert.Equal(t, "원활", res.Items[0].Congestion)
}

func TestService_RoutesFallback(t *testing.T) {
	svc := traffic.NewService(traffic.ServiceConfig{
		Routes: &mockRoutes{err: feed.ErrUnexpectedShape},
		Events: &mockEvents{},
		Logger: zerolog.Nop(),
	})

	res := svc.Routes(context.Background())

	require.True(t, res.Fallback)
	assert.Equal(t, traffic.RouteFallbackMessage, res.Message)
	assert.Equal(t, traffic.FallbackRoutes(), res.Items)
	require.Len(t, res.Items, 4)
	assert.Equal(t, "중부고속도로", res.Items[3].RouteName)
	assert.Equal(t, "90", res.Items[3].Speed)
}

func TestService_EventsNormalizesQuery(t *testing.T) {
	events := &mockEvents{rows: []json.RawMessage{json.RawMessage(`{"eventType":"공사"}`)}}
	svc := traffic.NewService(traffic.ServiceConfig{Routes: &mockRoutes{}, Events: events, Logger: zerolog.Nop()})

	res := svc.Events(context.Background(), traffic.EventQuery{})

	assert.False(t, res.Fallback)
	assert.JSONEq(t, `{"eventType":"공사"}`, string(res.Items[0]))
	assert.Equal(t, traffic.EventQuery{Type: "all", NumOfRows: 10, PageNo: 1}, events.got)
}

func TestService_EventsFallback(t *testing.T) {
	svc := traffic.NewService(traffic.ServiceConfig{
		Routes: &mockRoutes{},
		Events: &mockEvents{err: errors.New("connection reset")},
		Logger: zerolog.Nop(),
	})

	res := svc.Events(context.Background(), traffic.EventQuery{})

	require.True(t, res.Fallback)
	assert.Equal(t, traffic.EventFallbackMessage, res.Message)
	require.Len(t, res.Items, len(traffic.FallbackEvents()))

	var ev traffic.TrafficEvent
	require.NoError(t, json.Unmarshal(res.Items[0], &ev))
	assert.Equal(t, traffic.FallbackEvents()[0], ev)
}
