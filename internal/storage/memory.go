package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/topfiveapp/topfive/internal/task"
)

// MemoryBackend is an in-process Backend for tests and throwaway runs.
// Records round-trip through the same encode/decode path as the real
// backends so codec behavior is exercised everywhere.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[string]string
	closed      bool

	// FailWrites makes every mutation fail, for error-path tests.
	FailWrites bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string]map[string]string)}
}

var errWriteFailed = errors.New("simulated write failure")

// GetAll implements Backend.
func (b *MemoryBackend) GetAll(ctx context.Context, collection string) (map[string]*task.Task, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	coll, ok := b.collections[collection]
	if !ok {
		return nil, false, nil
	}
	tasks := make(map[string]*task.Task, len(coll))
	for id, value := range coll {
		tasks[id] = task.Decode(id, value)
	}
	return tasks, true, nil
}

// SetFields implements Backend.
func (b *MemoryBackend) SetFields(ctx context.Context, collection string, fields map[string]*task.Task) error {
	if len(fields) == 0 {
		return nil
	}
	if b.FailWrites {
		return errWriteFailed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	coll, ok := b.collections[collection]
	if !ok {
		coll = make(map[string]string)
		b.collections[collection] = coll
	}
	for id, t := range fields {
		encoded, err := task.Encode(t)
		if err != nil {
			return err
		}
		coll[id] = encoded
	}
	return nil
}

// DeleteField implements Backend. Deleting the last field drops the
// collection, matching redis hash behavior.
func (b *MemoryBackend) DeleteField(ctx context.Context, collection, id string) error {
	if b.FailWrites {
		return errWriteFailed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	coll, ok := b.collections[collection]
	if !ok {
		return nil
	}
	delete(coll, id)
	if len(coll) == 0 {
		delete(b.collections, collection)
	}
	return nil
}

// SetRaw stores a raw string value directly, bypassing the codec. Tests use
// it to plant legacy records.
func (b *MemoryBackend) SetRaw(collection, id, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	coll, ok := b.collections[collection]
	if !ok {
		coll = make(map[string]string)
		b.collections[collection] = coll
	}
	coll[id] = value
}

// Ping implements Backend.
func (b *MemoryBackend) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return errors.New("backend closed")
	}
	return nil
}

// Close implements Backend.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
