package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without calling the upstream while its breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 8 << 20

// maxSnippetBytes caps the body kept on a StatusError.
const maxSnippetBytes = 256

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ClientConfig configures an upstream client.
type ClientConfig struct {
	Name string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt. Zero
	// means exactly one attempt.
	MaxRetries uint64

	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Breaker defaults to DefaultBreakerConfig(Name).
	Breaker *BreakerConfig

	// Registry, when set, receives the client and every call outcome.
	Registry *Registry

	// Header is added to every request.
	Header http.Header

	// Transport overrides the HTTP transport; mostly useful in tests.
	Transport http.RoundTripper
}

// DefaultClientConfig returns a single-attempt client with a 10s timeout.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Client calls one upstream through a circuit breaker.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	cfg      ClientConfig
	registry *Registry
}

// NewClient builds a client and registers it when cfg.Registry is set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	bc := DefaultBreakerConfig(cfg.Name)
	if cfg.Breaker != nil {
		bc = *cfg.Breaker
		if bc.Name == "" {
			bc.Name = cfg.Name
		}
	}

	c := &Client{
		name:     cfg.Name,
		http:     &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		breaker:  newBreaker[[]byte](bc),
		cfg:      cfg,
		registry: cfg.Registry,
	}

	if c.registry != nil {
		c.registry.Register(c.name, c)
	}

	return c
}

// Name returns the upstream name the client was built with.
func (c *Client) Name() string {
	return c.name
}

// Get issues a GET to url and returns the response body of a 2xx reply.
// 5xx replies and transport errors count against the breaker and are
// retried within the configured budget. Other non-2xx replies are returned
// as *StatusError without retry and leave the breaker closed, as does a
// cancelled ctx.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var body []byte
	op := func() error {
		b, err := c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(ctx, url)
		})

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(ErrCircuitOpen)
		case err != nil:
			var se *StatusError
			if errors.As(err, &se) && se.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body = b
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		c.recordFailure(err)
		return nil, err
	}

	c.recordSuccess()
	return body, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.cfg.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body, maxSnippetBytes)}
	}

	return body, nil
}

// snippet returns at most n bytes of b without splitting a UTF-8 sequence.
func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n])
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.name, err)
	}
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters for the current generation.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
