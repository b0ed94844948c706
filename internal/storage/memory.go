package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a thread-safe store used when a database is not configured.
type InMemoryStore struct {
	mu          sync.RWMutex
	generations []Generation
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{generations: make([]Generation, 0)}
}

// CreateGeneration prepends a record, keeping only the newest ones.
func (s *InMemoryStore) CreateGeneration(_ context.Context, input Generation) (Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	s.generations = append([]Generation{input}, s.generations...)
	if len(s.generations) > historyLimit {
		s.generations = s.generations[:historyLimit]
	}

	return input, nil
}

// ListGenerations returns a snapshot of the newest matching records.
func (s *InMemoryStore) ListGenerations(_ context.Context, filter ListFilter) ([]Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := clampLimit(filter.Limit)
	snapshot := make([]Generation, 0, n)
	for _, g := range s.generations {
		if len(snapshot) == n {
			break
		}
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		snapshot = append(snapshot, g)
	}
	return snapshot, nil
}

// GetGeneration returns a record by ID.
func (s *InMemoryStore) GetGeneration(_ context.Context, id string) (Generation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.generations {
		if g.ID == id {
			return g, nil
		}
	}
	return Generation{}, ErrNotFound
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
