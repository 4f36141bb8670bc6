// Package expressway calls the Korea Expressway Corporation traffic API.
package expressway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mobileid/portal/internal/feed"
	"github.com/mobileid/portal/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in logs and the registry.
	ProviderName = "expressway"

	// DefaultBaseURL is the traffic API root.
	DefaultBaseURL = "http://data.ex.co.kr/api/trafficapi"
)

// ClientConfig holds configuration for the expressway client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
}

// Client is a Korea Expressway traffic API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates an expressway client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
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

// Routes calls trafficInfo and returns the rows of its "list" field.
func (c *Client) Routes(ctx context.Context) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, feed.ErrMissingKey
	}

	params := url.Values{"key": {c.apiKey}, "type": {"json"}}
	body, err := c.httpClient.Get(ctx, c.baseURL+"/trafficInfo?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("expressway trafficInfo: %w", err)
	}

	var resp struct {
		List json.RawMessage `json:"list"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding expressway trafficInfo: %w", err)
	}
	if len(resp.List) == 0 || string(resp.List) == "null" {
		return nil, fmt.Errorf("expressway trafficInfo: list missing: %w", feed.ErrUnexpectedShape)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(resp.List, &rows); err != nil {
		return nil, fmt.Errorf("expressway trafficInfo: list is not an array: %w", feed.ErrUnexpectedShape)
	}
	return rows, nil
}
