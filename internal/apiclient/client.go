// Package apiclient is a typed client for the portal API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mobileid/portal/internal/directory"
	"github.com/mobileid/portal/internal/suggestion"
)

// DefaultBaseURL is the API address used by the CLI when none is given.
const DefaultBaseURL = "http://localhost:8080"

// maxResponseBytes bounds a decoded response body.
const maxResponseBytes = 4 << 20

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api returned %d %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("api returned %d %s", e.StatusCode, e.Title)
}

// Config holds configuration for the client.
type Config struct {
	BaseURL string

	// Timeout bounds one request. Defaults to 15s.
	Timeout time.Duration

	// Token, when set, is sent as a Bearer token.
	Token string

	// HTTPClient overrides the traced default client.
	HTTPClient *http.Client
}

// Client calls the portal API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
	}
}

// OilPrices fetches GET /api/oil-price.
func (c *Client) OilPrices(ctx context.Context) (*Feed[OilPrice], error) {
	return getFeed[OilPrice](ctx, c, "/api/oil-price", nil)
}

// NearbyStations fetches GET /api/nearby-stations. A zero radius leaves the
// server default.
func (c *Client) NearbyStations(ctx context.Context, lat, lng string, radius int) (*Feed[GasStation], error) {
	q := url.Values{"lat": {lat}, "lng": {lng}}
	if radius > 0 {
		q.Set("radius", strconv.Itoa(radius))
	}
	return getFeed[GasStation](ctx, c, "/api/nearby-stations", q)
}

// TrafficInfo fetches GET /api/traffic-info.
func (c *Client) TrafficInfo(ctx context.Context) (*Feed[TrafficInfo], error) {
	return getFeed[TrafficInfo](ctx, c, "/api/traffic-info", nil)
}

// TrafficEvents fetches GET /api/traffic. Empty or zero arguments leave the
// server defaults.
func (c *Client) TrafficEvents(ctx context.Context, eventType string, numOfRows, pageNo int) (*Feed[TrafficEvent], error) {
	q := url.Values{}
	if eventType != "" {
		q.Set("type", eventType)
	}
	if numOfRows > 0 {
		q.Set("numOfRows", strconv.Itoa(numOfRows))
	}
	if pageNo > 0 {
		q.Set("pageNo", strconv.Itoa(pageNo))
	}
	return getFeed[TrafficEvent](ctx, c, "/api/traffic", q)
}

// Weather fetches GET /api/weather. Empty coordinates select the server
// default point.
func (c *Client) Weather(ctx context.Context, lat, lng string) (*Feed[Observation], error) {
	q := url.Values{}
	if lat != "" || lng != "" {
		q.Set("lat", lat)
		q.Set("lng", lng)
	}
	return getFeed[Observation](ctx, c, "/api/weather", q)
}

// AirQuality fetches GET /api/air-quality.
func (c *Client) AirQuality(ctx context.Context, sido string) (*Feed[AirReading], error) {
	q := url.Values{}
	if sido != "" {
		q.Set("sido", sido)
	}
	return getFeed[AirReading](ctx, c, "/api/air-quality", q)
}

// Parking fetches GET /api/parking.
func (c *Client) Parking(ctx context.Context, limit int) (*Feed[ParkingLot], error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return getFeed[ParkingLot](ctx, c, "/api/parking", q)
}

// Menu fetches GET /api/menu.
func (c *Client) Menu(ctx context.Context) ([]directory.IssuanceLink, error) {
	return getList[directory.IssuanceLink](ctx, c, "/api/menu", nil)
}

// IssuanceLinks fetches GET /api/issuance-links.
func (c *Client) IssuanceLinks(ctx context.Context) ([]directory.IssuanceLink, error) {
	return getList[directory.IssuanceLink](ctx, c, "/api/issuance-links", nil)
}

// SearchPlaces fetches GET /api/places.
func (c *Client) SearchPlaces(ctx context.Context, q string) ([]directory.Place, error) {
	return getList[directory.Place](ctx, c, "/api/places", url.Values{"q": {q}})
}

// CommunityPosts fetches GET /api/community/posts.
func (c *Client) CommunityPosts(ctx context.Context) ([]directory.CommunityPost, error) {
	return getList[directory.CommunityPost](ctx, c, "/api/community/posts", nil)
}

// Suggestions fetches GET /api/suggestions.
func (c *Client) Suggestions(ctx context.Context) ([]suggestion.Suggestion, error) {
	return getList[suggestion.Suggestion](ctx, c, "/api/suggestions", nil)
}

// SubmitSuggestion posts to /api/suggestions.
func (c *Client) SubmitSuggestion(ctx context.Context, in suggestion.Input) (*suggestion.Suggestion, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding suggestion: %w", err)
	}

	var out suggestion.Suggestion
	if err := c.do(ctx, http.MethodPost, "/api/suggestions", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getFeed[T any](ctx context.Context, c *Client, path string, q url.Values) (*Feed[T], error) {
	var out Feed[T]
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getList[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	var out List[T]
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []T{}
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// decodeError reads either a problem document or the feed error body.
func decodeError(status int, data []byte) error {
	var body struct {
		Title   string `json:"title"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &Error{StatusCode: status, Title: http.StatusText(status)}
	if json.Unmarshal(data, &body) != nil {
		return apiErr
	}

	switch {
	case body.Title != "":
		apiErr.Title = body.Title
		apiErr.Detail = body.Detail
	case body.Error != "":
		apiErr.Title = body.Error
		apiErr.Detail = body.Message
	}
	return apiErr
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
