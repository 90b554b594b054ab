package keyring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// credentialsFile is the name of the on-disk credentials store.
const credentialsFile = "credentials.json"

// File is a file-backed Keyring storing values as a JSON object with 0600
// permissions under the user config directory. It is the CLI's stand-in for
// the platform secure storage.
type File struct {
	mu   sync.Mutex
	path string
}

var _ Keyring = (*File)(nil)

// NewFile creates a Keyring backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFile creates a Keyring at the default credentials location.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/habitkit.
func DefaultFile() (*File, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return NewFile(filepath.Join(dir, "habitkit", credentialsFile)), nil
}

// Get returns the stored value or ErrNotFound.
func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	items[key] = value
	return f.write(items)
}

// Delete removes key. Deleting a missing key is a no-op.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.write(items)
}

// read loads the credentials file. A missing file is an empty store.
func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path) // #nosec G304 -- path is constructed from the user config dir
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	items := make(map[string]string)
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return items, nil
}

// write persists the store atomically: write to a temp file in the same
// directory, then rename over the target.
func (f *File) write(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
