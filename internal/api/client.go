// Package api implements the HTTP client for the meal service under test.
//
// Every call is a single blocking request. Results retain the raw response
// body so callers can assert on literal substrings of the JSON text.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTimeout bounds each individual request.
const DefaultTimeout = 5 * time.Second

// Client talks to a meal service instance.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDebugLogging wraps the transport to dump full round trips at debug level.
func WithDebugLogging() Option {
	return func(c *Client) {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.http.Transport = &debugTransport{base: base, logger: c.logger}
	}
}

// New constructs a client for the service at base (e.g. http://localhost:5000).
func New(base string, opts ...Option) *Client {
	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a single request and reads the full body. A non-2xx status is
// not an error here; callers decide what the contract requires.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		buf, err := marshalJSON(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("request", "method", method, "url", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response %s %s: %w", method, path, err)
	}

	c.logger.Debug("response", "method", method, "url", url, "status", resp.StatusCode, "bytes", len(raw))

	return &Result{StatusCode: resp.StatusCode, Body: raw}, nil
}

func marshalJSON(v any) ([]byte, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return buf, nil
}

// debugTransport logs full request/response dumps at debug level.
type debugTransport struct {
	base   http.RoundTripper
	logger *log.Logger
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		dt.logger.Debug("http request", "dump", string(dump))
	}
	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		dt.logger.Debug("http request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}
	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.logger.Debug("http response", "dump", string(dump))
	}
	return resp, nil
}
