package wallets

import (
	"context"
	"errors"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")

	// the conditional decrement matched no row: a concurrent request changed the balance
	ErrConcurrentUpdate = errors.New("wallet changed concurrently")
)

// Wallet is one user's credit state as stored.
type Wallet struct {
	UserID                string       `json:"user_id"`
	FreeDailyRemaining    int          `json:"free_daily_credits_remaining"`
	SubscriptionRemaining int          `json:"subscription_credits_remaining"`
	TopupRemaining        int          `json:"topup_credits_remaining"`
	Plan                  credits.Plan `json:"subscription_plan"`
	RenewsAt              *time.Time   `json:"subscription_renews_at,omitempty"`
	LastDailyReset        time.Time    `json:"last_daily_reset"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

func (w *Wallet) Balance() credits.Balance {
	return credits.Balance{
		FreeDaily:    w.FreeDailyRemaining,
		Subscription: w.SubscriptionRemaining,
		Topup:        w.TopupRemaining,
		Plan:         w.Plan,
		RenewsAt:     w.RenewsAt,
	}
}

// a wallet as it looks right after lazy creation
func NewDefaultWallet(userID string, now time.Time) *Wallet {
	return &Wallet{
		UserID:             userID,
		FreeDailyRemaining: credits.DailyFreeCredits,
		Plan:               credits.PlanFree,
		LastDailyReset:     now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Store is the row-level persistence the wallet service needs.
type Store interface {
	Find(ctx context.Context, userID string) (*Wallet, error)

	// inserts a default wallet; returns the existing row if one was created concurrently
	Create(ctx context.Context, userID string, now time.Time) (*Wallet, error)

	// refills the free allowance only if last_daily_reset <= cutoff; otherwise returns the current row
	ResetDaily(ctx context.Context, userID string, cutoff, now time.Time) (*Wallet, error)

	// subtracts the deduction only if no field goes negative, else ErrConcurrentUpdate
	Deduct(ctx context.Context, userID string, d credits.Deduction, now time.Time) (*Wallet, error)

	// refills every wallet whose last reset is at or before cutoff
	ResetStaleDaily(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// CheckResult is the outcome of a read-only sufficiency probe.
type CheckResult struct {
	HasEnough     bool            `json:"has_enough"`
	CreditsNeeded int             `json:"credits_needed"`
	Shortfall     int             `json:"shortfall"`
	Balance       credits.Balance `json:"balance"`
}

// ChargeResult is the outcome of a debit.
type ChargeResult struct {
	Charged       bool              `json:"charged"`
	CreditsNeeded int               `json:"credits_needed"`
	Shortfall     int               `json:"shortfall,omitempty"`
	Deduction     credits.Deduction `json:"deduction"`
	Balance       credits.Balance   `json:"balance"`
}
