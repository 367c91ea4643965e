package wallet

import (
	"context"

	"codeberg.org/miriamlab/server/api/rest/pagination"
	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/miriamlab/ledger"
	"codeberg.org/miriamlab/server/miriamlab/usage"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

type BalanceReader interface {
	GetBalance(ctx context.Context, userID string) (*wallets.Wallet, error)
}

type UsageReader interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]usage.Entry, int, error)
}

type LedgerReader interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]ledger.Entry, error)
}

// WalletResponse is the caller's wallet with its plan capabilities.
type WalletResponse struct {
	Wallet       *wallets.Wallet `json:"wallet"`
	TotalCredits int             `json:"total_credits"`
	Limits       credits.Limits  `json:"limits"`
}

type UsageResponse struct {
	Entries    []usage.Entry   `json:"entries"`
	Pagination pagination.Meta `json:"pagination"`
}

type BillingHistoryResponse struct {
	Entries []ledger.Entry `json:"entries"`
}

type PricingResponse struct {
	Plans      []credits.Limits    `json:"plans"`
	TopupPacks []credits.TopupPack `json:"topup_packs"`
	Actions    credits.Pricing     `json:"actions"`
}
