package keyring

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AuthToken is the access/refresh credential pair plus the access token's
// expiry. The zero Expiry means the expiry is unknown.
type AuthToken struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Valid reports whether the access token is usable at the given instant.
// A missing access token is never valid; an unknown expiry is treated as
// expired so the caller refreshes rather than sending a stale credential.
func (t AuthToken) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return false
	}
	return now.Before(t.Expiry)
}

// Store reads and writes the AuthToken through a Keyring. The only writers
// are login, refresh-success, and logout; everything else reads.
type Store struct {
	kr Keyring
}

// NewStore creates a Store backed by kr.
func NewStore(kr Keyring) *Store {
	return &Store{kr: kr}
}

// Load retrieves the stored token pair. Returns ErrNoToken when no access
// token is stored. A present access token with an unreadable or unparsable
// expiry is returned with a zero Expiry so the caller can decide.
func (s *Store) Load(ctx context.Context) (AuthToken, error) {
	access, err := s.kr.Get(ctx, KeyAccessToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthToken{}, ErrNoToken
		}
		return AuthToken{}, fmt.Errorf("load access token: %w", err)
	}
	if access == "" {
		return AuthToken{}, ErrNoToken
	}

	tok := AuthToken{AccessToken: access}

	if refresh, err := s.kr.Get(ctx, KeyRefreshToken); err == nil {
		tok.RefreshToken = refresh
	} else if !errors.Is(err, ErrNotFound) {
		return AuthToken{}, fmt.Errorf("load refresh token: %w", err)
	}

	if raw, err := s.kr.Get(ctx, KeyTokenExpiry); err == nil {
		if exp, perr := time.Parse(time.RFC3339, raw); perr == nil {
			tok.Expiry = exp
		}
	} else if !errors.Is(err, ErrNotFound) {
		return AuthToken{}, fmt.Errorf("load token expiry: %w", err)
	}

	return tok, nil
}

// Save atomically replaces the stored token pair. The access token is
// written last so a partially written pair never validates.
func (s *Store) Save(ctx context.Context, tok AuthToken) error {
	if tok.AccessToken == "" {
		return fmt.Errorf("save token: empty access token")
	}

	if err := s.kr.Set(ctx, KeyRefreshToken, tok.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if err := s.kr.Set(ctx, KeyTokenExpiry, tok.Expiry.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save token expiry: %w", err)
	}
	if err := s.kr.Set(ctx, KeyAccessToken, tok.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	return nil
}

// Clear removes all stored token fields. Missing keys are not an error.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyTokenExpiry} {
		if err := s.kr.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}
