package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]Session // oldest first
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Session)}
}

func (s *MemoryStore) List(_ context.Context, userID string, limit int) ([]Session, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sessions[userID]
	out := make([]Session, 0, min(len(all), limit))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}

	return out, nil
}

func (s *MemoryStore) Create(_ context.Context, sess *Session, limit int) error {
	if err := prepare(sess, limit); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(s.sessions[sess.UserID], *sess)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	if excess := len(all) - limit; excess > 0 {
		all = all[excess:]
	}
	s.sessions[sess.UserID] = all

	return nil
}
