package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, "/api/health", nil)
}

// DBCheck calls GET /api/db-check.
func (c *Client) DBCheck(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, "/api/db-check", nil)
}

// ErrNotReady is returned by WaitReady when the service did not become
// healthy before the wait budget ran out.
var ErrNotReady = errors.New("service did not become ready")

// WaitReady polls the health endpoint with exponential backoff until it
// answers 200, the wait budget elapses, or an irrecoverable status is seen.
//
// 4xx statuses (except 408 and 429) mean the endpoint is simply wrong and
// waiting longer will not help; 5xx and network errors are treated as the
// service still coming up.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = maxWait

	attempt := 0
	op := func() error {
		attempt++
		res, err := c.Health(ctx)
		if err != nil {
			c.logger.Debug("health probe failed", "attempt", attempt, "error", err)
			return err
		}
		if res.StatusCode == http.StatusOK {
			return nil
		}
		err = fmt.Errorf("health endpoint returned status %d", res.StatusCode)
		if !retryableStatus(res.StatusCode) {
			return backoff.Permanent(err)
		}
		c.logger.Debug("health probe not ready", "attempt", attempt, "status", res.StatusCode)
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("%w after %d attempts: %v", ErrNotReady, attempt, err)
	}
	c.logger.Debug("service ready", "attempts", attempt)
	return nil
}

// retryableStatus reports whether a status code is worth waiting out.
func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 400 && code < 500:
		return false
	default:
		return true
	}
}
