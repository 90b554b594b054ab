// Package keyring persists the authentication token pair behind a small
// secure key-value contract. The contract mirrors the platform secure
// storage the mobile client uses (one string value per key), so any
// backend with get/set/delete semantics can hold the tokens.
package keyring

import "context"

// Storage keys for the persisted token fields.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyTokenExpiry  = "tokenExpiry"
)

// Keyring is the secure key-value collaborator. Implementations must treat
// a missing key as ErrNotFound, not as an empty value.
type Keyring interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
