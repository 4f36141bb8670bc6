// Package seoul calls the Seoul open data plaza parking service.
package seoul

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
	ProviderName = "seoul"

	// DefaultBaseURL is the Seoul open API root.
	DefaultBaseURL = "http://openapi.seoul.go.kr:8088"

	service = "GetParkingInfo"
)

// ClientConfig holds configuration for the Seoul client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
}

// Client is a Seoul open API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates a Seoul open API client.
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

// Lots fetches rows 1..limit of GetParkingInfo and returns GetParkingInfo.row.
func (c *Client) Lots(ctx context.Context, limit int) ([]json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, feed.ErrMissingKey
	}

	u := fmt.Sprintf("%s/%s/json/%s/1/%d/", c.baseURL, url.PathEscape(c.apiKey), service, limit)
	body, err := c.httpClient.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("seoul %s: %w", service, err)
	}

	var resp struct {
		Info *struct {
			Result struct {
				Code    string `json:"CODE"`
				Message string `json:"MESSAGE"`
			} `json:"RESULT"`
			Row json.RawMessage `json:"row"`
		} `json:"GetParkingInfo"`
		Result *struct {
			Code    string `json:"CODE"`
			Message string `json:"MESSAGE"`
		} `json:"RESULT"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding seoul %s: %w", service, err)
	}

	if resp.Info == nil {
		msg := "no GetParkingInfo object"
		if resp.Result != nil {
			msg = resp.Result.Code + " " + resp.Result.Message
		}
		return nil, fmt.Errorf("seoul %s: %s: %w", service, msg, feed.ErrUnexpectedShape)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(resp.Info.Row, &rows); err != nil || rows == nil {
		return nil, fmt.Errorf("seoul %s: row missing: %w", service, feed.ErrUnexpectedShape)
	}
	return rows, nil
}
