package ledger

import (
	"context"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// ledger event types
const (
	EventStart  = "start"
	EventRenew  = "renew"
	EventCancel = "cancel"
	EventTopup  = "topup"
)

// Entry is an immutable audit record of one billing mutation.
type Entry struct {
	ID            string         `json:"id"`
	EventID       string         `json:"event_id"`
	UserID        string         `json:"user_id"`
	EventType     string         `json:"event_type"`
	Plan          credits.Plan   `json:"plan"`
	CreditsAdded  int            `json:"credits_added"`
	AmountCents   int64          `json:"amount_cents"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Mutation is the wallet change paired with a ledger entry.
type Mutation struct {
	// set plan, replace subscription credits, set renews_at
	SetSubscription bool
	Plan            credits.Plan
	Subscription    int
	RenewsAt        *time.Time

	// added to topup_remaining
	AddTopup int
}

// Store records an entry and applies its mutation atomically.
// A repeated event id is a no-op reported as applied == false.
type Store interface {
	Apply(ctx context.Context, entry Entry, m Mutation) (applied bool, w *wallets.Wallet, err error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error)
}
