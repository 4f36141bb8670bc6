// Package airkorea calls the AirKorea real-time measurement service on data.go.kr.
package airkorea

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/provider/datagokr"
	"github.com/mobileid/portal/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in logs and the registry.
	ProviderName = "airkorea"

	// DefaultBaseURL is the data.go.kr root.
	DefaultBaseURL = "http://apis.data.go.kr"

	sidoPath = "B552584/ArpltnInforInqireSvc/getCtprvnRltmMesureDnsty"
)

// ClientConfig holds configuration for the AirKorea client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
}

// Client is an AirKorea client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates an AirKorea client.
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

// Readings calls getCtprvnRltmMesureDnsty for one province.
func (c *Client) Readings(ctx context.Context, sido string) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, feed.ErrMissingKey
	}

	params := url.Values{
		"returnType": {"json"},
		"numOfRows":  {"100"},
		"pageNo":     {"1"},
		"sidoName":   {sido},
		"ver":        {"1.0"},
	}

	body, err := c.httpClient.Get(ctx, datagokr.URL(c.baseURL, sidoPath, c.apiKey, params))
	if err != nil {
		return nil, fmt.Errorf("airkorea getCtprvnRltmMesureDnsty: %w", err)
	}

	rows, err := datagokr.Items(body)
	if err != nil {
		return nil, fmt.Errorf("airkorea getCtprvnRltmMesureDnsty: %w", err)
	}
	return rows, nil
}
