package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/habitkit/go-habitkit/internal/apierr"
)

// doJSON issues a request and decodes the JSON response into out. A nil out
// discards the body.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	body, err := c.Do(ctx, endpoint, RequestOptions{Method: method, Body: in})
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response (body: %q): %w", endpoint, snippet(body), apierr.ErrMalformedResponse)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, endpoint, in, out)
}

func (c *Client) putJSON(ctx context.Context, endpoint string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, endpoint, in, out)
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}
