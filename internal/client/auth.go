package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/habitkit/go-habitkit/internal/apierr"
	"github.com/habitkit/go-habitkit/internal/keyring"
	"github.com/habitkit/go-habitkit/internal/logctx"
)

// User is the authenticated account as the backend reports it.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Credentials are the login parameters.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterParams are the account creation parameters.
type RegisterParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// authTokenResponse is the token payload returned by login, register, and
// refresh. The refresh token may be rotated; expiresAt may be absent, in
// which case the token manager falls back to the JWT exp claim.
type authTokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (r authTokenResponse) authToken() keyring.AuthToken {
	return keyring.AuthToken{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		Expiry:       r.ExpiresAt,
	}
}

// loginResponse is the full login/register payload.
type loginResponse struct {
	authTokenResponse
	User User `json:"user"`
}

// Login authenticates with email and password and persists the returned
// token pair. The login endpoint skips token validation entirely.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	body, err := c.Do(ctx, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body:   creds,
	})
	if err != nil {
		return nil, err
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse login response (body: %q): %w", snippet(body), apierr.ErrMalformedResponse)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("login response missing token: %w", apierr.ErrMalformedResponse)
	}

	if err := c.store.Save(ctx, parsed.authToken()); err != nil {
		return nil, fmt.Errorf("persist login token: %w", err)
	}

	return &parsed.User, nil
}

// Register creates an account. Depending on backend policy the account may
// start unapproved, in which case no token pair is returned yet.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*User, error) {
	body, err := c.Do(ctx, "/auth/register", RequestOptions{
		Method: http.MethodPost,
		Body:   params,
	})
	if err != nil {
		return nil, err
	}

	var parsed loginResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse register response (body: %q): %w", snippet(body), apierr.ErrMalformedResponse)
	}

	if parsed.AccessToken != "" {
		if err := c.store.Save(ctx, parsed.authToken()); err != nil {
			return nil, fmt.Errorf("persist register token: %w", err)
		}
	}

	return &parsed.User, nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the session server-side, then clears the stored pair.
// The local pair is cleared even when the revocation call fails: a dead
// backend must not pin a stale credential on the device.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.Do(ctx, "/auth/logout", RequestOptions{Method: http.MethodPost}); err != nil {
		logctx.From(ctx).Warn("logout revocation failed", "err", err.Error())
	}
	return c.tokens.Invalidate(ctx)
}
