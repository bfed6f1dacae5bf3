// Package storage provides test utilities for storage backends.
//
// Tests needing a backend should use NewTestBackend: it is in-memory for
// speed and cleaned up via t.Cleanup().
package storage

import (
	"testing"
)

// NewTestBackend creates an in-memory backend for testing. The backend is
// automatically closed when the test completes.
func NewTestBackend(t testing.TB) *MemoryBackend {
	t.Helper()

	backend := NewMemoryBackend()
	t.Cleanup(func() {
		_ = backend.Close()
	})
	return backend
}
