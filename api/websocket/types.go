package websocket

import (
	"context"

	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// Subscriber hands out per-user wallet event subscriptions.
type Subscriber interface {
	Subscribe(userID string) *events.Subscription
	Subscribers(userID string) int
}

type BalanceReader interface {
	GetBalance(ctx context.Context, userID string) (*wallets.Wallet, error)
}
