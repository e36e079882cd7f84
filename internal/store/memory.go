// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for development and tests, or whenever sessions need not survive a
// restart.
//
// Characteristics:
//   - Stores session snapshots keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/wortmanb/wordlebot/internal/solver"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store persists session snapshots between requests.
// Implementations may be backed by memory (this file) or Redis.
type Store interface {
	// Save persists or updates a snapshot.
	Save(ctx context.Context, snap solver.Snapshot) error

	// Get retrieves a snapshot by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (solver.Snapshot, error)

	// Delete removes a snapshot. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored session IDs in sorted order.
	List(ctx context.Context) ([]string, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex               // guards snaps
	snaps map[string]solver.Snapshot // keyed by Snapshot.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{snaps: make(map[string]solver.Snapshot)}
}

// Save adds or updates the snapshot.
func (m *memory) Save(ctx context.Context, snap solver.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.Turns = append([]solver.Turn(nil), snap.Turns...)
	m.snaps[snap.ID] = snap
	return nil
}

// Get looks up a snapshot by ID.
func (m *memory) Get(ctx context.Context, id string) (solver.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.snaps[id]; ok {
		s.Turns = append([]solver.Turn(nil), s.Turns...)
		return s, nil
	}
	return solver.Snapshot{}, ErrNotFound
}

// Delete drops a snapshot.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

// List returns all IDs.
func (m *memory) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.snaps))
	for id := range m.snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
