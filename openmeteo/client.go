// Package openmeteo talks to the public Open-Meteo APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/flitsinc/weather-mcp/logging"
)

const (
	UserAgent      = "weather-app/0.1"
	DefaultTimeout = 30 * time.Second
)

// Client fetches JSON documents from Open-Meteo. It holds no connections
// between calls and is safe for concurrent use.
type Client struct {
	timeout   time.Duration
	transport http.RoundTripper
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the total deadline of a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTransport makes every fetch go through rt instead of a fresh transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLogger sets where fetch failures are reported.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient returns a Client with a 30 second deadline that reports failures
// on standard error.
func NewClient(opts ...Option) *Client {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.Default()
	}
	return c
}

// Fetch GETs rawURL and decodes its JSON body. Numbers are kept as
// json.Number so re-encoding reproduces them exactly.
//
// Every failure (transport, timeout, non-2xx status, malformed body) is
// reported as a single diagnostic line and collapses to ok == false.
func (c *Client) Fetch(ctx context.Context, rawURL string) (value any, ok bool) {
	value, err := c.fetch(ctx, rawURL)
	if err != nil {
		c.log.Error(fmt.Sprintf("Error fetching data from Open-Meteo API: %v", err))
		return nil, false
	}
	return value, true
}

func (c *Client) fetch(ctx context.Context, rawURL string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	client := c.newHTTPClient()
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s for url %s", resp.Status, rawURL)
	}
	return decodeJSON(resp.Body)
}

// newHTTPClient returns a client scoped to one fetch.
func (c *Client) newHTTPClient() *http.Client {
	transport := c.transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &http.Client{Transport: transport, Timeout: c.timeout}
}

func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode response: trailing data after JSON value")
	}
	return v, nil
}
