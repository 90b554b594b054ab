// Package transport wraps an HTTP doer with a hard per-request timeout.
// When the timer fires the underlying connection is aborted through context
// cancellation, not merely abandoned, so no socket is left dangling.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/habitkit/go-habitkit/internal/apierr"
)

// DefaultTimeout is the hard response deadline when none is configured.
const DefaultTimeout = 15 * time.Second

// Doer abstracts the underlying HTTP client for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance check.
var _ Doer = (*http.Client)(nil)

// Client dispatches requests with a per-request deadline.
type Client struct {
	doer    Doer
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets a custom HTTP doer (for testing).
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a Client with production defaults.
func New(opts ...Option) *Client {
	c := &Client{
		doer:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes req under the configured deadline. A request that exceeds the
// deadline fails with apierr.ErrTimeout; connection-level failures are
// classified to apierr.ErrNetwork. The returned response body carries the
// deadline's cancel func and releases it on Close.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), c.timeout)
	req = req.WithContext(ctx)

	resp, err := c.doer.Do(req)
	if err != nil {
		cancel()
		classified := apierr.ClassifyDial(err)
		if classified != err {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, classified)
		}
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	// Keep the context alive until the caller finishes the body.
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelBody releases the request deadline when the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
