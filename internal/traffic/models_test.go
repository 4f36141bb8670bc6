package traffic_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/traffic"
)

func raws(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestToTrafficInfo_Defaults(t *testing.T) {
	rows := raws(t,
		`{"routeName":"경부선","startName":"서울TG","endName":"신갈JC","congestion":"정체","speed":"23"}`,
		`{}`,
		`{"routeName":"","speed":0,"congestion":null}`,
		`{"routeName":"영동선","speed":87.5}`,
	)

	got := traffic.ToTrafficInfo(rows)
	require.Len(t, got, 4)

	assert.Equal(t, traffic.TrafficInfo{
		RouteName: "경부선", StartName: "서울TG", EndName: "신갈JC", Congestion: "정체", Speed: "23",
	}, got[0])

	empty := traffic.TrafficInfo{RouteName: "정보 없음", StartName: "", EndName: "", Congestion: "원활", Speed: "-"}
	assert.Equal(t, empty, got[1])
	assert.Equal(t, empty, got[2])

	assert.Equal(t, "영동선", got[3].RouteName)
	assert.Equal(t, "87.5", got[3].Speed)
}

func TestToTrafficInfo_TakesFirstTwenty(t *testing.T) {
	items := make([]string, 30)
	for i := range items {
		items[i] = fmt.Sprintf(`{"routeName":"route-%d"}`, i)
	}

	got := traffic.ToTrafficInfo(raws(t, items...))

	require.Len(t, got, traffic.MaxRoutes)
	assert.Equal(t, "route-0", got[0].RouteName)
	assert.Equal(t, "route-19", got[19].RouteName)
}

func TestToTrafficInfo_SkipsNonObjects(t *testing.T) {
	got := traffic.ToTrafficInfo(raws(t, `"text"`, `null`, `42`, `[]`, `{"routeName":"ok"}`))

	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].RouteName)
}

func TestToTrafficInfo_NonObjectsDoNotCountTowardLimit(t *testing.T) {
	rows := []string{`null`, `7`}
	for i := 0; i < traffic.MaxRoutes; i++ {
		rows = append(rows, `{"routeName":"r"}`)
	}

	got := traffic.ToTrafficInfo(raws(t, rows...))
	assert.Len(t, got, traffic.MaxRoutes)
}

func TestEventQuery_Normalize(t *testing.T) {
	q := traffic.EventQuery{}.Normalize()
	assert.Equal(t, traffic.EventQuery{Type: "all", NumOfRows: 10, PageNo: 1}, q)

	q = traffic.EventQuery{Type: "cor", NumOfRows: 500, PageNo: 3}.Normalize()
	assert.Equal(t, traffic.EventQuery{Type: "cor", NumOfRows: 100, PageNo: 3}, q)
}
