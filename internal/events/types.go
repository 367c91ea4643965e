package events

import (
	"context"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
)

const TypeWalletChanged = "wallet.changed"

// reasons a wallet changed
const (
	ReasonCharge       = "charge"
	ReasonSubscription = "subscription"
	ReasonTopup        = "topup"
	ReasonSnapshot     = "snapshot" // current balance sent when a stream opens
)

// WalletChanged tells subscribers that a user's balance moved.
type WalletChanged struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id"`
	Reason  string          `json:"reason"`
	Balance credits.Balance `json:"balance"`
	At      time.Time       `json:"at"`
}

func NewWalletChanged(userID, reason string, balance credits.Balance, at time.Time) WalletChanged {
	return WalletChanged{
		Type:    TypeWalletChanged,
		UserID:  userID,
		Reason:  reason,
		Balance: balance,
		At:      at,
	}
}

// Publisher fans a wallet change out to whoever is listening. Publish never blocks on slow subscribers.
type Publisher interface {
	Publish(ctx context.Context, event WalletChanged)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, WalletChanged) {}
