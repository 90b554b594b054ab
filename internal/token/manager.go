// Package token decides when the stored access token is usable and refreshes
// it when it is not. Concurrent callers share a single in-flight refresh so
// N simultaneous expired-token requests produce one refresh round-trip.
package token

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/habitkit/go-habitkit/internal/apierr"
	"github.com/habitkit/go-habitkit/internal/keyring"
	"github.com/habitkit/go-habitkit/internal/logctx"
)

// refreshKey is the singleflight key: there is only ever one token pair, so
// all refresh attempts coalesce onto one flight.
const refreshKey = "refresh"

// RefreshFunc exchanges a refresh token for a new token pair against the
// auth endpoint. Implementations must not mutate stored state.
type RefreshFunc func(ctx context.Context, refreshToken string) (keyring.AuthToken, error)

// Manager owns token freshness. It reads and writes the pair exclusively
// through a keyring.Store.
type Manager struct {
	store   *keyring.Store
	refresh RefreshFunc
	now     func() time.Time
	group   singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithNow sets the time provider (for testing).
func WithNow(fn func() time.Time) Option {
	return func(m *Manager) {
		m.now = fn
	}
}

// NewManager creates a Manager. refresh is invoked whenever the stored pair
// is absent or expired.
func NewManager(store *keyring.Store, refresh RefreshFunc, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		refresh: refresh,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureValid returns an access token that is fresh at the time of the call.
// A fresh stored token is returned without any network traffic; an absent or
// expired one triggers exactly one coalesced refresh. Failure to produce a
// usable token is apierr.ErrAuthFailed.
func (m *Manager) EnsureValid(ctx context.Context) (string, error) {
	tok, err := m.store.Load(ctx)
	if err != nil && !errors.Is(err, keyring.ErrNoToken) {
		return "", fmt.Errorf("ensure token: %w", err)
	}

	if m.fresh(tok) {
		return tok.AccessToken, nil
	}

	return m.refreshShared(ctx, tok.AccessToken)
}

// ForceRefresh obtains a new access token after staleAccess was rejected by
// the server. If a concurrent refresh already replaced staleAccess, the
// replacement is returned without another round-trip.
func (m *Manager) ForceRefresh(ctx context.Context, staleAccess string) (string, error) {
	return m.refreshShared(ctx, staleAccess)
}

// Invalidate discards the stored pair (logout).
func (m *Manager) Invalidate(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// refreshShared coalesces refresh attempts behind one in-flight call.
// staleAccess is the access token the caller already knows is unusable;
// the flight re-reads the store first so callers queued behind a completed
// refresh reuse its result instead of refreshing again.
func (m *Manager) refreshShared(ctx context.Context, staleAccess string) (string, error) {
	v, err, _ := m.group.Do(refreshKey, func() (any, error) {
		tok, err := m.store.Load(ctx)
		if err != nil && !errors.Is(err, keyring.ErrNoToken) {
			return "", err
		}

		// Another caller's refresh may have landed while we queued.
		if tok.AccessToken != "" && tok.AccessToken != staleAccess && m.fresh(tok) {
			return tok.AccessToken, nil
		}

		if tok.RefreshToken == "" {
			return "", fmt.Errorf("no refresh token: %w", apierr.ErrAuthFailed)
		}

		fresh, err := m.refresh(ctx, tok.RefreshToken)
		if err != nil {
			// The stored pair is left untouched on any refresh failure.
			return "", fmt.Errorf("token refresh: %w", err)
		}
		if fresh.AccessToken == "" {
			return "", fmt.Errorf("token refresh returned empty token: %w", apierr.ErrAuthFailed)
		}
		if fresh.RefreshToken == "" {
			// Server did not rotate the refresh token; keep the current one.
			fresh.RefreshToken = tok.RefreshToken
		}

		if err := m.store.Save(ctx, fresh); err != nil {
			return "", fmt.Errorf("persist refreshed token: %w", err)
		}

		logctx.From(ctx).Debug("token refreshed",
			slog.Time("expiry", fresh.Expiry),
		)
		return fresh.AccessToken, nil
	})
	if err != nil {
		if errors.Is(err, apierr.ErrAuthFailed) {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", err.Error(), apierr.ErrAuthFailed)
	}
	return v.(string), nil
}

// fresh reports whether tok is usable now. A stored pair without an expiry
// falls back to the unverified exp claim of the access token itself; the
// client holds no signing key and only needs the expiry hint.
func (m *Manager) fresh(tok keyring.AuthToken) bool {
	if tok.AccessToken == "" {
		return false
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = claimExpiry(tok.AccessToken)
	}
	return tok.Valid(m.now())
}

// claimExpiry extracts the exp claim from a JWT access token without
// verifying the signature. Returns the zero time if the token is not a JWT
// or carries no exp claim.
func claimExpiry(access string) time.Time {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(access, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
