// Package metering sequences credit checks and charges around an orchestration:
// a read-only preflight before dispatch and a debit only after the action succeeded.
package metering

import (
	"context"
	"errors"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/logger"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/miriamlab/usage"
)

func NewMeter(w Wallets, u UsageLogger, publisher events.Publisher, m *metrics.Metrics) *Meter {
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Meter{
		wallets:   w,
		usage:     u,
		publisher: publisher,
		metrics:   m,
	}
}

// Preflight checks the plan gate, then sufficiency, without writing anything.
// Returns *credits.GateError or *InsufficientCreditsError when the action must not run.
func (m *Meter) Preflight(ctx context.Context, userID string, mode credits.Mode, modelCount int) (*credits.Balance, error) {
	check, err := m.wallets.CheckOnly(ctx, userID, mode, modelCount)
	if err != nil {
		return nil, err
	}

	usageMode := credits.UsageMode(mode, modelCount)

	if err := credits.CheckFeatureGate(check.Balance.Plan, mode, modelCount); err != nil {
		var gate *credits.GateError
		if errors.As(err, &gate) {
			m.metrics.RecordPreflightDenial(usageMode, gate.Code)
		}
		return nil, err
	}

	if !check.HasEnough {
		m.metrics.RecordPreflightDenial(usageMode, "insufficient_credits")
		return nil, &InsufficientCreditsError{
			CreditsNeeded: check.CreditsNeeded,
			Shortfall:     check.Shortfall,
			Balance:       check.Balance,
		}
	}

	return &check.Balance, nil
}

// Settle charges a successful action. Debit failures are not returned: the caller
// already has a result to deliver, so the receipt reports charged=false and the
// anomaly is logged and counted instead.
func (m *Meter) Settle(ctx context.Context, a Action) Receipt {
	usageMode := credits.UsageMode(a.Mode, a.ModelCount)

	res, err := m.wallets.Debit(ctx, a.UserID, a.Mode, a.ModelCount)
	if err != nil {
		m.metrics.RecordChargeAnomaly(usageMode, AnomalyStoreError)
		logger.ErrorErr(err, "charge anomaly: debit failed after successful action",
			"user_id", a.UserID,
			"mode", usageMode,
		)
		return Receipt{Charged: false}
	}

	if !res.Charged {
		m.metrics.RecordChargeAnomaly(usageMode, AnomalyInsufficient)
		logger.Warn("charge anomaly: balance insufficient after successful action",
			"user_id", a.UserID,
			"mode", usageMode,
			"credits_needed", res.CreditsNeeded,
			"shortfall", res.Shortfall,
		)
		balance := res.Balance
		return Receipt{Charged: false, Balance: &balance}
	}

	m.metrics.RecordCharge(usageMode, res.CreditsNeeded)

	entry := &usage.Entry{
		UserID:       a.UserID,
		Mode:         usageMode,
		CreditsSpent: res.CreditsNeeded,
		Models:       a.Summary.Models,
		TokensIn:     a.Summary.Usage.PromptTokens,
		TokensOut:    a.Summary.Usage.CompletionTokens,
		Metadata:     usageMetadata(a),
	}
	if err := m.usage.Log(ctx, entry); err != nil {
		logger.ErrorErr(err, "failed to record usage entry",
			"user_id", a.UserID,
			"mode", usageMode,
			"credits_spent", res.CreditsNeeded,
		)
	}

	m.publisher.Publish(ctx, events.NewWalletChanged(a.UserID, events.ReasonCharge, res.Balance, time.Now()))

	balance := res.Balance
	return Receipt{Charged: true, CreditsSpent: res.CreditsNeeded, Balance: &balance}
}

func usageMetadata(a Action) map[string]any {
	md := map[string]any{
		"succeeded":    a.Summary.Succeeded,
		"failed":       a.Summary.Failed,
		"total_tokens": a.Summary.Usage.TotalTokens,
	}
	for k, v := range a.Metadata {
		md[k] = v
	}
	return md
}
