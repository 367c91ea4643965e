package shares

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	results map[string]Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]Result)}
}

func (s *MemoryStore) Create(_ context.Context, r *Result) error {
	if err := prepare(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetPublic(_ context.Context, id string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.results[id]
	if !ok || !r.IsPublic {
		return nil, ErrNotFound
	}

	return &r, nil
}

// hides a result, as an owner would
func (s *MemoryStore) Unpublish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.results[id]; ok {
		r.IsPublic = false
		s.results[id] = r
	}
}
