package opinet_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/fuel"
	"github.com/mobileid/portal/internal/fuel/opinet"
	"github.com/mobileid/portal/internal/provider/resilience"
)

const avgAllPriceJSON = `{"RESULT":{"OIL":[
	{"TRADE_DT":"20241019","PRODCD":"B027","PRODNM":"휘발유","PRICE":"1663.45","DIFF":"+0.52"},
	{"TRADE_DT":"20241019","PRODCD":"D047","PRODNM":"자동차용경유","PRICE":"1498.12","DIFF":"-0.31"}
]}}`

func newClient(t *testing.T, url, key string) *opinet.Client {
	t.Helper()
	return opinet.NewClient(opinet.ClientConfig{
		APIKey:     key,
		BaseURL:    url,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig(t.Name())),
	})
}

func TestClient_AveragePrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/avgAllPrice.do", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("code"))
		assert.Equal(t, "json", r.URL.Query().Get("out"))
		_, _ = w.Write([]byte(avgAllPriceJSON))
	}))
	defer server.Close()

	rows, err := newClient(t, server.URL, "test-key").AveragePrices(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.JSONEq(t,
		`{"TRADE_DT":"20241019","PRODCD":"B027","PRODNM":"휘발유","PRICE":"1663.45","DIFF":"+0.52"}`,
		string(rows[0]))
}

func TestClient_NearbyStationsParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/aroundAll.do", r.URL.Path)
		assert.Equal(t, "126.9780", q.Get("x"))
		assert.Equal(t, "37.5665", q.Get("y"))
		assert.Equal(t, "3000", q.Get("radius"))
		assert.Equal(t, "1", q.Get("sort"))
		assert.Equal(t, "B027", q.Get("prodcd"))
		_, _ = w.Write([]byte(`{"RESULT":{"OIL":[{"UNI_ID":"A0000001","OS_NM":"테스트주유소","PRICE":1650,"DISTANCE":321.5}]}}`))
	}))
	defer server.Close()

	rows, err := newClient(t, server.URL, "k").NearbyStations(context.Background(), fuel.StationQuery{
		Lat: "37.5665", Lng: "126.9780", Radius: 3000,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, string(rows[0]), "A0000001")
}

func TestClient_UnexpectedShape(t *testing.T) {
	bodies := map[string]string{
		"no RESULT":      `{"error":"invalid key"}`,
		"no OIL":         `{"RESULT":{}}`,
		"OIL null":       `{"RESULT":{"OIL":null}}`,
		"OIL not a list": `{"RESULT":{"OIL":"none"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL, "k").AveragePrices(context.Background())
			assert.ErrorIs(t, err, feed.ErrUnexpectedShape)
		})
	}
}

func TestClient_MissingKeySkipsUpstream(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, "").AveragePrices(context.Background())
	assert.ErrorIs(t, err, feed.ErrMissingKey)
	assert.False(t, called)
}

func TestClient_SendsBrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://www.opinet.co.kr/", r.Header.Get("Referer"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		_, _ = w.Write([]byte(avgAllPriceJSON))
	}))
	defer server.Close()

	rc := resilience.DefaultClientConfig("opinet-headers")
	rc.Header = opinet.Headers
	c := opinet.NewClient(opinet.ClientConfig{APIKey: "k", BaseURL: server.URL, HTTPClient: resilience.NewClient(rc)})

	_, err := c.AveragePrices(context.Background())
	require.NoError(t, err)
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "opinet", opinet.NewClient(opinet.ClientConfig{}).Name())
}
