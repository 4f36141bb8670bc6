package suggestion

import (
	"context"
	"sync"
)

// InMemoryRepository keeps suggestions in process memory. Nothing survives a
// restart.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Suggestion
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// List returns up to limit suggestions, newest first.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Suggestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	out := make([]Suggestion, 0, min(limit, len(r.items)))
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

// Create appends a suggestion. A suggestion whose ID is already stored is
// ignored.
func (r *InMemoryRepository) Create(_ context.Context, s Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.ID == s.ID {
			return nil
		}
	}
	r.items = append(r.items, s)
	return nil
}

var _ Repository = (*InMemoryRepository)(nil)
