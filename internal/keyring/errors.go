package keyring

import "errors"

// ErrNotFound indicates the requested key has no stored value.
var ErrNotFound = errors.New("key not found")

// ErrNoToken indicates no complete token pair is stored. A missing token is
// equivalent to an invalid one.
var ErrNoToken = errors.New("no stored token")
