// Package storage provides the key-value backend abstraction for topfive.
// It supports redis (the primary store), a local sqlite file, and an
// in-memory backend for tests.
package storage

import (
	"context"

	"github.com/topfiveapp/topfive/internal/task"
)

// CollectionKey returns the storage key for a workspace's task collection.
func CollectionKey(ws task.Workspace) string {
	return "tasks:" + string(ws)
}

// Backend defines the hash-style storage operations for topfive.
// All implementations must be safe for concurrent access.
//
// A collection is a mapping from task ID to serialized task record. Hash
// stores drop a collection once its last field is deleted, so "collection
// absent" is the sentinel for "no data" — GetAll reports it via found=false,
// distinct from an error.
type Backend interface {
	// GetAll returns every task in the collection. found is false when the
	// collection does not exist.
	GetAll(ctx context.Context, collection string) (tasks map[string]*task.Task, found bool, err error)

	// SetFields upserts the given tasks in one write. The write is atomic
	// from the caller's perspective: no interleaved partial state is
	// visible for the same call. An empty mapping is a no-op and must not
	// issue a malformed write.
	SetFields(ctx context.Context, collection string, fields map[string]*task.Task) error

	// DeleteField removes one task. Deleting an absent field succeeds.
	DeleteField(ctx context.Context, collection, id string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
