// Package kma calls the Korea Meteorological Administration short-term
// forecast service on data.go.kr.
package kma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/provider/datagokr"
	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/weather"
)

const (
	// ProviderName identifies this provider in logs and the registry.
	ProviderName = "kma"

	// DefaultBaseURL is the data.go.kr root.
	DefaultBaseURL = "http://apis.data.go.kr"

	nowcastPath = "1360000/VilageFcstInfoService_2.0/getUltraSrtNcst"
)

// ClientConfig holds configuration for the KMA client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
}

// Client is a KMA nowcast client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates a KMA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{apiKey: cfg.APIKey, baseURL: baseURL, httpClient: httpClient}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Nowcast calls getUltraSrtNcst for one grid cell.
func (c *Client) Nowcast(ctx context.Context, q weather.NowcastQuery) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, feed.ErrMissingKey
	}

	params := url.Values{
		"pageNo":    {"1"},
		"numOfRows": {"10"},
		"dataType":  {"JSON"},
		"base_date": {q.BaseDate},
		"base_time": {q.BaseTime},
		"nx":        {strconv.Itoa(q.Grid.Nx)},
		"ny":        {strconv.Itoa(q.Grid.Ny)},
	}

	body, err := c.httpClient.Get(ctx, datagokr.URL(c.baseURL, nowcastPath, c.apiKey, params))
	if err != nil {
		return nil, fmt.Errorf("kma getUltraSrtNcst: %w", err)
	}

	rows, err := datagokr.Items(body)
	if err != nil {
		return nil, fmt.Errorf("kma getUltraSrtNcst: %w", err)
	}
	return rows, nil
}
