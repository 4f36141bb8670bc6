// Package molit calls the MOLIT road event service on data.go.kr.
package molit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/provider/datagokr"
	"github.com/mobileid/portal/internal/provider/resilience"
	"github.com/mobileid/portal/internal/traffic"
)

const (
	// ProviderName identifies this provider in logs and the registry.
	ProviderName = "molit"

	// DefaultBaseURL is the TrafficRoadEventService root.
	DefaultBaseURL = "http://apis.data.go.kr/1613000/TrafficRoadEventService"
)

// ClientConfig holds configuration for the MOLIT client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
}

// Client is a MOLIT road event client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates a MOLIT client.
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

// Events calls getTrafficRoadEvent and returns response.body.items.item.
func (c *Client) Events(ctx context.Context, q traffic.EventQuery) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, feed.ErrMissingKey
	}

	params := url.Values{
		"pageNo":    {strconv.Itoa(q.PageNo)},
		"numOfRows": {strconv.Itoa(q.NumOfRows)},
		"type":      {q.Type},
		"_type":     {"json"},
	}

	body, err := c.httpClient.Get(ctx, datagokr.URL(c.baseURL, "getTrafficRoadEvent", c.apiKey, params))
	if err != nil {
		return nil, fmt.Errorf("molit getTrafficRoadEvent: %w", err)
	}

	rows, err := datagokr.Items(body)
	if err != nil {
		return nil, fmt.Errorf("molit getTrafficRoadEvent: %w", err)
	}
	return rows, nil
}
