// Package randomorg probes random.org, the external randomness source the
// meal service depends on for battle outcomes.
package randomorg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultURL returns one plain-text decimal fraction with two digits.
const DefaultURL = "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"

// Timeout matches the service's own budget for this call.
const Timeout = 5 * time.Second

// Client fetches decimal fractions from random.org.
type Client struct {
	url    string
	http   *http.Client
	logger *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the random.org endpoint (used in tests).
func WithURL(u string) Option {
	return func(c *Client) { c.url = u }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New constructs a Client.
func New(opts ...Option) *Client {
	c := &Client{
		url:    DefaultURL,
		http:   &http.Client{Timeout: Timeout},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRandom fetches one random decimal fraction. The response must be a
// plain-text float; anything else is an error.
func (c *Client) GetRandom(ctx context.Context) (float64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("building random.org request: %w", err)
	}

	c.logger.Debug("fetching random number", "url", c.url)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request to random.org failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("random.org returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("reading random.org response: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, text, fmt.Errorf("invalid response from random.org: %q", text)
	}
	if n < 0 || n > 1 {
		return n, text, fmt.Errorf("random.org value %v outside [0,1]", n)
	}

	c.logger.Debug("received random number", "value", n)
	return n, text, nil
}
