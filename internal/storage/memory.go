package storage

import (
	"bytes"
	"context"
	"sync"

	"itdash/internal/dash"
)

// MemoryStorage is an in-memory implementation of dash.Storage.
// Nothing survives the process, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = bytes.Clone(value)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Close is a no-op for in-memory storage.
func (m *MemoryStorage) Close() error {
	return nil
}

// Compile-time check that MemoryStorage implements dash.Storage interface
var _ dash.Storage = (*MemoryStorage)(nil)
