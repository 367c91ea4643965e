package wallets

import (
	"context"
	"sync"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	wallets map[string]*Wallet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{wallets: make(map[string]*Wallet)}
}

// stores a copy of w, replacing any existing wallet for the user
func (s *MemoryStore) Put(w Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wallets[w.UserID] = &w
}

// applies fn to the user's wallet under the store lock, creating a default wallet first if needed
func (s *MemoryStore) Mutate(userID string, now time.Time, fn func(w *Wallet)) *Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		w = NewDefaultWallet(userID, now)
		s.wallets[userID] = w
	}

	fn(w)
	w.UpdatedAt = now

	out := *w
	return &out
}

func (s *MemoryStore) Find(_ context.Context, userID string) (*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}

	out := *w
	return &out, nil
}

func (s *MemoryStore) Create(_ context.Context, userID string, now time.Time) (*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		w = NewDefaultWallet(userID, now)
		s.wallets[userID] = w
	}

	out := *w
	return &out, nil
}

func (s *MemoryStore) ResetDaily(_ context.Context, userID string, cutoff, now time.Time) (*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}

	if !w.LastDailyReset.After(cutoff) {
		w.FreeDailyRemaining = credits.DailyFreeCredits
		w.LastDailyReset = now
		w.UpdatedAt = now
	}

	out := *w
	return &out, nil
}

func (s *MemoryStore) Deduct(_ context.Context, userID string, d credits.Deduction, now time.Time) (*Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[userID]
	if !ok {
		return nil, ErrWalletNotFound
	}

	if w.FreeDailyRemaining < d.Free || w.SubscriptionRemaining < d.Subscription || w.TopupRemaining < d.Topup {
		return nil, ErrConcurrentUpdate
	}

	w.FreeDailyRemaining -= d.Free
	w.SubscriptionRemaining -= d.Subscription
	w.TopupRemaining -= d.Topup
	w.UpdatedAt = now

	out := *w
	return &out, nil
}

func (s *MemoryStore) ResetStaleDaily(_ context.Context, cutoff, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, w := range s.wallets {
		if w.LastDailyReset.After(cutoff) {
			continue
		}

		w.FreeDailyRemaining = credits.DailyFreeCredits
		w.LastDailyReset = now
		w.UpdatedAt = now
		n++
	}

	return n, nil
}
