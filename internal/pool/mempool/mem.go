// Package mempool provides an in-memory pool store for testing.
package mempool

import (
	"context"
	"sync"

	"github.com/discochess/coach/internal/pool"
)

var _ pool.Store = (*Store)(nil)

// Store keeps the persisted pool in memory.
type Store struct {
	mu      sync.Mutex
	entries []pool.Entry
	saved   bool
	saves   int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Seed pre-populates the store (for test setup).
func (s *Store) Seed(entries []pool.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]pool.Entry(nil), entries...)
	s.saved = true
}

// Load returns the stored entries, or pool.ErrNotFound before the first Save.
func (s *Store) Load(ctx context.Context) ([]pool.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return nil, pool.ErrNotFound
	}
	return append([]pool.Entry(nil), s.entries...), nil
}

// Save replaces the stored entries.
func (s *Store) Save(ctx context.Context, entries []pool.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]pool.Entry(nil), entries...)
	s.saved = true
	s.saves++
	return nil
}

// Saves reports how many times Save was called (for test assertions).
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Entries returns the last saved entries in persisted order.
func (s *Store) Entries() []pool.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pool.Entry(nil), s.entries...)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
