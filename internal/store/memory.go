package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory RunStateStore. Useful for tests and embedded
// call sites that need no persistence across restarts.
type MemoryStore struct {
	mu      sync.Mutex
	running bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetRunning implements RunStateStore.
func (s *MemoryStore) GetRunning(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running, nil
}

// SetRunning implements RunStateStore.
func (s *MemoryStore) SetRunning(_ context.Context, running bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = running

	return nil
}
