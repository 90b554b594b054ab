// Package client is the authenticated API request orchestrator: it builds
// requests against the habitkit backend, attaches the bearer token, enforces
// the timeout transport, retries on recoverable failures, and routes every
// terminal failure once through the error classification service.
//
// The retry budget is shared: 401-with-successful-refresh and transient
// network failures draw from the same counter, so a request is attempted at
// most MaxRetries+1 times regardless of why it is retried. Timeouts are
// terminal and never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/habitkit/go-habitkit/internal/apierr"
	"github.com/habitkit/go-habitkit/internal/errreport"
	"github.com/habitkit/go-habitkit/internal/keyring"
	"github.com/habitkit/go-habitkit/internal/logctx"
	"github.com/habitkit/go-habitkit/internal/token"
	"github.com/habitkit/go-habitkit/internal/transport"
)

// Retry policy defaults, shared across the 401 and network paths.
const (
	DefaultMaxRetries     = 2
	DefaultRetryBaseDelay = 250 * time.Millisecond
	defaultRetryMaxDelay  = 2 * time.Second
)

// snippetLen bounds how much of a raw body ends up in errors and logs.
const snippetLen = 100

// errRetryRequest signals a 401 that was recovered by a token refresh; the
// request should be reissued with the new token. Never escapes Do.
var errRetryRequest = errors.New("retrying after token refresh")

// authExemptEndpoints never go through token validation.
var authExemptEndpoints = map[string]bool{
	"/auth/login":    true,
	"/auth/register": true,
	"/auth/refresh":  true,
}

// RequestOptions shape a single orchestrated request.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is JSON-marshaled unless it is a []byte, which is sent raw.
	Body any
	// Header entries override the defaults per key.
	Header http.Header
	// SkipAuth suppresses token validation and the 401-refresh path.
	SkipAuth bool
}

// Client orchestrates authenticated requests. Construct with New.
type Client struct {
	baseURL  string
	basePath string
	http     *transport.Client
	store    *keyring.Store
	tokens   *token.Manager
	report   *errreport.Reporter
	retry    apierr.RetryConfig
	newID    func() string
}

// Option configures a Client.
type Option func(*Client)

// WithBasePath sets the versioned path prefix. Defaults to /api/v1.
func WithBasePath(p string) Option {
	return func(c *Client) {
		c.basePath = p
	}
}

// WithTransport sets the timeout transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		c.http = t
	}
}

// WithKeyring sets the token storage backend. Defaults to in-memory.
func WithKeyring(kr keyring.Keyring) Option {
	return func(c *Client) {
		c.store = keyring.NewStore(kr)
	}
}

// WithReporter sets the error classification service.
func WithReporter(r *errreport.Reporter) Option {
	return func(c *Client) {
		c.report = r
	}
}

// WithRetry sets the shared retry budget and backoff delays.
func WithRetry(cfg apierr.RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithRequestID sets the request-ID generator (for testing).
func WithRequestID(fn func() string) Option {
	return func(c *Client) {
		c.newID = fn
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		basePath: "/api/v1",
		http:     transport.New(),
		store:    keyring.NewStore(keyring.NewMemory()),
		report:   errreport.NewReporter(),
		retry: apierr.RetryConfig{
			MaxRetries: DefaultMaxRetries,
			BaseDelay:  DefaultRetryBaseDelay,
			MaxDelay:   defaultRetryMaxDelay,
		},
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tokens = token.NewManager(c.store, c.refreshAuthToken)
	return c
}

// Tokens exposes the token manager for wiring and tests.
func (c *Client) Tokens() *token.Manager {
	return c.tokens
}

// Do issues one orchestrated request and returns the raw response body.
// JSON bodies are validated; non-JSON bodies pass through as-is. Terminal
// failures are classified and reported exactly once before being returned.
func (c *Client) Do(ctx context.Context, endpoint string, opts RequestOptions) ([]byte, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	attempt := 0
	var lastSnippet string

	data, err := apierr.RetryWithBackoff(ctx, c.retry, func() ([]byte, error) {
		n := attempt
		attempt++
		return c.attempt(ctx, endpoint, opts, n, &lastSnippet)
	}, func(err error) bool {
		return errors.Is(err, errRetryRequest) || apierr.Transient(err)
	})
	if err != nil {
		return nil, c.reportFailure(err, endpoint, opts.Method, attempt-1, lastSnippet)
	}
	return data, nil
}

// attempt performs a single HTTP round-trip. n is the zero-based attempt
// index, used to stop refreshing once the shared budget is spent.
func (c *Client) attempt(ctx context.Context, endpoint string, opts RequestOptions, n int, lastSnippet *string) ([]byte, error) {
	lg := logctx.From(ctx)

	access := ""
	if !opts.SkipAuth && !authExemptEndpoints[endpoint] {
		var err error
		access, err = c.tokens.EnsureValid(ctx)
		if err != nil {
			// No usable token and no recovery: fail before spending a
			// network call.
			return nil, err
		}
	}

	req, err := c.buildRequest(ctx, endpoint, opts, access)
	if err != nil {
		return nil, err
	}

	lg.Debug("api request",
		slog.String("method", opts.Method),
		slog.String("endpoint", endpoint),
		slog.Int("attempt", n),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", apierr.ClassifyDial(err))
	}
	*lastSnippet = snippet(body)

	if resp.StatusCode == http.StatusUnauthorized && !opts.SkipAuth && !authExemptEndpoints[endpoint] {
		if n >= c.retry.MaxRetries {
			return nil, fmt.Errorf("unauthorized after %d attempts: %w", n+1, apierr.ErrAuthFailed)
		}
		// Low-visibility by design: an expired access token mid-session is
		// routine, not an incident.
		lg.Warn("unauthorized, refreshing token",
			slog.String("endpoint", endpoint),
			slog.Int("attempt", n),
		)
		if _, err := c.tokens.ForceRefresh(ctx, access); err != nil {
			return nil, err
		}
		return nil, errRetryRequest
	}

	return c.parseResponse(resp, body)
}

// buildRequest constructs the outgoing request: resolved URL, JSON body,
// default headers, bearer token, request ID.
func (c *Client) buildRequest(ctx context.Context, endpoint string, opts RequestOptions, access string) (*http.Request, error) {
	var reader io.Reader
	switch body := opts.Body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(body)
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, c.url(endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", c.newID())
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return req, nil
}

// parseResponse interprets the body by declared content type. JSON parse
// failures are surfaced as malformed responses with a truncated snippet,
// never swallowed; non-2xx JSON surfaces the server message; non-2xx text
// is a network-level failure carrying the status.
func (c *Client) parseResponse(resp *http.Response, body []byte) ([]byte, error) {
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !isJSON {
		if !ok {
			return nil, &apierr.StatusError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, resp.Status),
				Kind:       apierr.ErrNetwork,
			}
		}
		return body, nil
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON response (body: %q): %w", snippet(body), apierr.ErrMalformedResponse)
	}

	if !ok {
		kind := apierr.ErrServer
		if resp.StatusCode == http.StatusUnauthorized {
			kind = apierr.ErrAuthFailed
		}
		return nil, &apierr.StatusError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body, resp.StatusCode),
			Kind:       kind,
		}
	}

	return body, nil
}

// reportFailure routes a terminal failure through the classification
// service exactly once, then returns it to the caller.
func (c *Client) reportFailure(err error, endpoint, method string, retries int, lastSnippet string) error {
	source := errreport.SourceAPI
	switch {
	case errors.Is(err, apierr.ErrAuthFailed):
		source = errreport.SourceAuth
	case errors.Is(err, apierr.ErrTimeout), errors.Is(err, apierr.ErrNetwork):
		source = errreport.SourceNetwork
	}

	ctx := map[string]any{
		"endpoint":   endpoint,
		"method":     method,
		"retryCount": retries,
	}
	if lastSnippet != "" {
		ctx["response"] = lastSnippet
	}

	c.report.Handle(err, errreport.Options{
		Source:  source,
		Level:   errreport.LevelError,
		Context: ctx,
	})
	return err
}

// refreshAuthToken exchanges the refresh token for a new pair. It goes
// straight through the transport: a failing refresh must not recurse into
// the orchestrator's own refresh-and-retry machinery, and its failure is
// reported by the request that triggered it.
func (c *Client) refreshAuthToken(ctx context.Context, refreshToken string) (keyring.AuthToken, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return keyring.AuthToken{}, fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/auth/refresh"), bytes.NewReader(payload))
	if err != nil {
		return keyring.AuthToken{}, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", c.newID())

	resp, err := c.http.Do(req)
	if err != nil {
		return keyring.AuthToken{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return keyring.AuthToken{}, fmt.Errorf("read refresh response: %w", apierr.ClassifyDial(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return keyring.AuthToken{}, &apierr.StatusError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body, resp.StatusCode),
			Kind:       apierr.ErrAuthFailed,
		}
	}

	var parsed authTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return keyring.AuthToken{}, fmt.Errorf("parse refresh response (body: %q): %w", snippet(body), apierr.ErrMalformedResponse)
	}

	return parsed.authToken(), nil
}

// url composes {baseURL}{basePath}{endpoint}.
func (c *Client) url(endpoint string) string {
	return c.baseURL + c.basePath + endpoint
}

// serverMessage extracts the message or error field of a JSON error
// payload, falling back to the status code.
func serverMessage(body []byte, statusCode int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP error %d", statusCode)
}

// snippet truncates a raw body for diagnostics. Full bodies never reach
// logs or error messages.
func snippet(body []byte) string {
	s := string(body)
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	return s
}
