// internal/cache/cache.go
//
// Session-scoped memo for search results.
//
// Characteristics:
//   - Keys combine the kind of result, the guess, the pool fingerprint and,
//     for lookahead results, the depth and strategy.
//   - Values are complete, immutable results; callers never store partial
//     work, so abandoning a search cannot leave a bad entry behind.
//   - Concurrency-safe via RWMutex (concurrent reads, exclusive writes).
//     Racing writers store equal values, so the last write wins harmlessly.
//   - Lives for one game session and is never persisted.

package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Kind names the operation a cached value belongs to.
type Kind uint8

const (
	KindPartition Kind = iota + 1
	KindEvaluation
	KindBestMove
	KindScore
)

func (k Kind) String() string {
	switch k {
	case KindPartition:
		return "partition"
	case KindEvaluation:
		return "evaluation"
	case KindBestMove:
		return "best-move"
	case KindScore:
		return "score"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Key identifies one cached result.
type Key struct {
	Kind     Kind
	Guess    string
	Pool     uint64 // words.Pool fingerprint
	Depth    int
	Strategy uint8
}

// Cache stores immutable results for the lifetime of a session.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(k Key) (any, bool)
	Put(k Key, v any)
	Len() int
	Clear()
}

// Memory is a map-backed Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]any
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewMemory constructs an empty in-memory Cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]any)}
}

// Get looks up k.
func (m *Memory) Get(k Key) (any, bool) {
	m.mu.RLock()
	v, ok := m.entries[k]
	m.mu.RUnlock()
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return v, ok
}

// Put stores v under k, replacing any earlier value.
func (m *Memory) Put(k Key, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k] = v
}

// Len is the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Clear drops every entry and resets the counters.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[Key]any)
	m.hits.Store(0)
	m.misses.Store(0)
}

// Stats reports lookup hits and misses since the last Clear.
func (m *Memory) Stats() (hits, misses uint64) {
	return m.hits.Load(), m.misses.Load()
}

// Nop is a Cache that stores nothing.
type Nop struct{}

func (Nop) Get(Key) (any, bool) { return nil, false }
func (Nop) Put(Key, any)        {}
func (Nop) Len() int            { return 0 }
func (Nop) Clear()              {}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = Nop{}
)
