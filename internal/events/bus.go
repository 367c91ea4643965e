package events

import (
	"context"
	"sync"
)

// per subscriber; events beyond this are dropped for that subscriber
const subscriberBuffer = 16

// Bus delivers wallet events to subscribers in this process, keyed by user.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}
}

// Subscription receives one user's events on C until Close is called.
type Subscription struct {
	C <-chan WalletChanged

	ch     chan WalletChanged
	bus    *Bus
	userID string
	once   sync.Once
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]map[*Subscription]struct{})}
}

func (b *Bus) Subscribe(userID string) *Subscription {
	ch := make(chan WalletChanged, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, bus: b, userID: userID}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[*Subscription]struct{})
	}
	b.subscribers[userID][sub] = struct{}{}

	return sub
}

// Close unregisters the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if subs := s.bus.subscribers[s.userID]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.bus.subscribers, s.userID)
			}
		}

		close(s.ch)
	})
}

func (b *Bus) Publish(_ context.Context, event WalletChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers[event.UserID] {
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// number of live subscriptions for a user
func (b *Bus) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[userID])
}
