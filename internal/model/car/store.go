package car

import (
	"context"
	"sync"
)

// Store persists the complete car collection. Implementations never read or
// write partially: Load returns the whole snapshot and Save replaces it.
type Store interface {
	// Load returns the persisted collection in insertion order. An absent
	// snapshot yields an empty collection and no error.
	Load(ctx context.Context) ([]Car, error)
	// Save overwrites the persisted collection with cars.
	Save(ctx context.Context, cars []Car) error
}

// MemoryStore implements Store with an in-memory slice. Useful for tests and
// throwaway deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Car
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied cars.
func NewMemoryStore(items []Car) *MemoryStore {
	return &MemoryStore{items: append([]Car(nil), items...)}
}

// Load returns a copy of the held collection.
func (s *MemoryStore) Load(_ context.Context) ([]Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Car{}, s.items...), nil
}

// Save replaces the held collection with a copy of cars.
func (s *MemoryStore) Save(_ context.Context, cars []Car) error {
	s.mu.Lock()
	s.items = append([]Car{}, cars...)
	s.mu.Unlock()
	return nil
}
