package metering

import (
	"context"
	"fmt"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/internal/orchestrator"
	"codeberg.org/miriamlab/server/miriamlab/usage"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

// anomaly reasons
const (
	AnomalyInsufficient = "insufficient"
	AnomalyStoreError   = "store_error"
)

// Wallets is the part of wallets.Service the meter needs.
type Wallets interface {
	CheckOnly(ctx context.Context, userID string, mode credits.Mode, modelCount int) (*wallets.CheckResult, error)
	Debit(ctx context.Context, userID string, mode credits.Mode, modelCount int) (*wallets.ChargeResult, error)
}

type UsageLogger interface {
	Log(ctx context.Context, e *usage.Entry) error
}

// Meter gates and charges metered actions.
type Meter struct {
	wallets   Wallets
	usage     UsageLogger
	publisher events.Publisher
	metrics   *metrics.Metrics
}

// InsufficientCreditsError is returned by Preflight when the wallet cannot cover the action.
type InsufficientCreditsError struct {
	CreditsNeeded int
	Shortfall     int
	Balance       credits.Balance
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, short by %d", e.CreditsNeeded, e.Shortfall)
}

// Action describes a completed orchestration to be charged.
type Action struct {
	UserID     string
	Mode       credits.Mode
	ModelCount int
	Summary    orchestrator.Summary

	// merged into the usage entry metadata
	Metadata map[string]any
}

// Receipt is the credits block attached to every successful metered response.
type Receipt struct {
	Charged      bool             `json:"charged"`
	CreditsSpent int              `json:"credits_spent"`
	Balance      *credits.Balance `json:"balance,omitempty"`
}
