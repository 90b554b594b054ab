package cli

import "errors"

// CLI-specific sentinel errors.
// These are setup/usage failures that don't belong to domain packages.

var (
	// ErrConfig indicates the client configuration could not be loaded or
	// the client could not be constructed from it.
	ErrConfig = errors.New("configuration error")

	// ErrNotLoggedIn indicates a command needs a session but no credentials
	// are stored.
	ErrNotLoggedIn = errors.New("not logged in")
)
