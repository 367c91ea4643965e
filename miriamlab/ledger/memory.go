package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// MemoryStore pairs an in-memory ledger with a wallets.MemoryStore.
type MemoryStore struct {
	mu      sync.Mutex
	wallets *wallets.MemoryStore
	entries []Entry
	seen    map[string]struct{}
}

func NewMemoryStore(w *wallets.MemoryStore) *MemoryStore {
	return &MemoryStore{
		wallets: w,
		seen:    make(map[string]struct{}),
	}
}

func (s *MemoryStore) Apply(_ context.Context, entry Entry, m Mutation) (bool, *wallets.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[entry.EventID]; dup {
		return false, nil, nil
	}

	if !m.SetSubscription && m.AddTopup <= 0 {
		return false, nil, fmt.Errorf("ledger entry %s has no wallet mutation", entry.EventID)
	}

	fillEntry(&entry)

	w := s.wallets.Mutate(entry.UserID, entry.CreatedAt, func(w *wallets.Wallet) {
		if m.SetSubscription {
			w.Plan = m.Plan
			w.SubscriptionRemaining = m.Subscription
			w.RenewsAt = m.RenewsAt
		}
		w.TopupRemaining += m.AddTopup
	})

	s.seen[entry.EventID] = struct{}{}
	s.entries = append(s.entries, entry)

	return true, w, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Entry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
