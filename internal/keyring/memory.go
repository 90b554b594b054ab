package keyring

import (
	"context"
	"sync"
)

// Memory is an in-memory Keyring for tests and ephemeral sessions.
type Memory struct {
	mu    sync.Mutex
	items map[string]string
}

// Compile-time interface compliance check.
var _ Keyring = (*Memory)(nil)

// NewMemory creates an empty in-memory Keyring.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// Get returns the stored value or ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
