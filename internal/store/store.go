// Package store provides an in-memory mirror of server-owned rows with
// optimistic inserts: an entry is added under a client-generated temp id,
// then swapped to the server id on confirmation or dropped on failure.
// Merging a server list preserves still-pending entries so a concurrent
// refresh does not clobber an unconfirmed local insert.
package store

import (
	"sync"

	"github.com/google/uuid"
)

// Identifiable is anything the mirror can key by id.
type Identifiable interface {
	Key() string
}

// Mirror keeps a snapshot of rows for one user plus pending optimistic
// inserts. All methods are safe for concurrent use.
type Mirror[T Identifiable] struct {
	mu      sync.Mutex
	items   map[string]T
	order   []string        // insertion order, newest first
	pending map[string]bool // temp ids awaiting confirmation
}

// New returns an empty mirror.
func New[T Identifiable]() *Mirror[T] {
	return &Mirror[T]{
		items:   make(map[string]T),
		pending: make(map[string]bool),
	}
}

// TempID generates a client-side id for an optimistic insert.
func TempID() string {
	return "tmp_" + uuid.NewString()
}

// Load replaces the mirror's contents with a server snapshot, discarding
// any pending entries.
func (m *Mirror[T]) Load(items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]T, len(items))
	m.order = m.order[:0]
	m.pending = make(map[string]bool)
	for _, it := range items {
		m.items[it.Key()] = it
		m.order = append(m.order, it.Key())
	}
}

// Insert adds an entry under tempID ahead of everything else.
func (m *Mirror[T]) Insert(tempID string, item T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[tempID] = item
	m.order = append([]string{tempID}, m.order...)
	m.pending[tempID] = true
}

// Confirm swaps a pending temp id for the server-assigned row. Returns
// false if the temp id is unknown (already confirmed, failed, or clobbered
// by a Load).
func (m *Mirror[T]) Confirm(tempID string, item T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending[tempID] {
		return false
	}
	delete(m.items, tempID)
	delete(m.pending, tempID)
	m.items[item.Key()] = item
	for i, id := range m.order {
		if id == tempID {
			m.order[i] = item.Key()
			break
		}
	}
	return true
}

// Fail removes a pending entry after the server rejected the insert.
func (m *Mirror[T]) Fail(tempID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending[tempID] {
		return
	}
	delete(m.items, tempID)
	delete(m.pending, tempID)
	for i, id := range m.order {
		if id == tempID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Remove drops a confirmed entry, e.g. after a successful delete.
func (m *Mirror[T]) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	for i, k := range m.order {
		if k == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Merge applies a fresh server list while keeping pending entries at the
// front. Confirmed rows not present in the server list are dropped.
func (m *Mirror[T]) Merge(items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make(map[string]T, len(items)+len(m.pending))
	order := make([]string, 0, len(items)+len(m.pending))
	for id := range m.pending {
		kept[id] = m.items[id]
		order = append(order, id)
	}
	for _, it := range items {
		if _, ok := kept[it.Key()]; ok {
			continue
		}
		kept[it.Key()] = it
		order = append(order, it.Key())
	}
	m.items = kept
	m.order = order
}

// List returns the mirrored rows, pending first, otherwise in load order.
func (m *Mirror[T]) List() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Get looks up a single row by id.
func (m *Mirror[T]) Get(id string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	return it, ok
}

// PendingCount reports how many optimistic inserts are unconfirmed.
func (m *Mirror[T]) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
