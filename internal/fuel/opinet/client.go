// Package opinet calls the Korea National Oil Corporation Opinet API.
package opinet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/fuel"
	"github.com/mobileid/portal/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in logs and the registry.
	ProviderName = "opinet"

	// DefaultBaseURL is the Opinet API root.
	DefaultBaseURL = "https://www.opinet.co.kr/api"
)

// Headers Opinet expects from a browser-like caller.
var Headers = http.Header{
	"User-Agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
	"Accept-Language": {"ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"},
	"Referer":         {"https://www.opinet.co.kr/"},
}

// ClientConfig holds configuration for the Opinet client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
}

// Client is an Opinet API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates an Opinet client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Header = Headers
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// AveragePrices calls avgAllPrice.do and returns RESULT.OIL.
func (c *Client) AveragePrices(ctx context.Context) ([]json.RawMessage, error) {
	return c.oil(ctx, "avgAllPrice.do", url.Values{})
}

// NearbyStations calls aroundAll.do for gasoline stations sorted by distance.
// Coordinates are forwarded unchanged, longitude as x and latitude as y.
func (c *Client) NearbyStations(ctx context.Context, q fuel.StationQuery) ([]json.RawMessage, error) {
	params := url.Values{
		"x":      {q.Lng},
		"y":      {q.Lat},
		"radius": {strconv.Itoa(q.Radius)},
		"sort":   {"1"},
		"prodcd": {fuel.ProductGasoline},
	}
	return c.oil(ctx, "aroundAll.do", params)
}

func (c *Client) oil(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, feed.ErrMissingKey
	}

	params.Set("code", c.apiKey)
	params.Set("out", "json")

	body, err := c.httpClient.Get(ctx, c.baseURL+"/"+endpoint+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("opinet %s: %w", endpoint, err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding opinet %s: %w", endpoint, err)
	}
	if resp.Result == nil || len(resp.Result.Oil) == 0 || string(resp.Result.Oil) == "null" {
		return nil, fmt.Errorf("opinet %s: RESULT.OIL missing: %w", endpoint, feed.ErrUnexpectedShape)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(resp.Result.Oil, &rows); err != nil {
		return nil, fmt.Errorf("opinet %s: RESULT.OIL is not a list: %w", endpoint, feed.ErrUnexpectedShape)
	}
	return rows, nil
}

type response struct {
	Result *struct {
		Oil json.RawMessage `json:"OIL"`
	} `json:"RESULT"`
}
