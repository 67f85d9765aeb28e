package testutil

import (
	"testing"

	"itdash/internal/storage"
)

// NewTestStorage returns an empty in-memory storage that is closed when the
// test completes.
func NewTestStorage(t *testing.T) *storage.MemoryStorage {
	t.Helper()

	s := storage.NewMemoryStorage()
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
