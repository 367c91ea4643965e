package wallets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
)

// a debit re-reads and retries when a concurrent request moved the balance
const maxDebitAttempts = 3

// Service applies the wallet rules (lazy creation, daily rollover, ordered debit) over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// overrides the clock, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// returns the wallet, creating it on first access and persisting a due daily reset
func (s *Service) GetBalance(ctx context.Context, userID string) (*Wallet, error) {
	return s.load(ctx, userID, s.now())
}

// probes sufficiency without writing anything. a missing wallet is treated as a fresh default one
func (s *Service) CheckOnly(ctx context.Context, userID string, mode credits.Mode, modelCount int) (*CheckResult, error) {
	now := s.now()

	w, err := s.store.Find(ctx, userID)
	if errors.Is(err, ErrWalletNotFound) {
		w = NewDefaultWallet(userID, now)
	} else if err != nil {
		return nil, err
	}

	balance, _ := credits.ApplyDailyReset(w.Balance(), w.LastDailyReset, now)
	needed := credits.CreditsNeeded(mode, modelCount)

	return &CheckResult{
		HasEnough:     credits.HasEnoughCredits(balance, needed),
		CreditsNeeded: needed,
		Shortfall:     max(needed-balance.Total(), 0),
		Balance:       balance,
	}, nil
}

// charges an action. sufficiency is re-checked against the stored row; an insufficient
// balance is reported through ChargeResult.Charged, not as an error
func (s *Service) Debit(ctx context.Context, userID string, mode credits.Mode, modelCount int) (*ChargeResult, error) {
	needed := credits.CreditsNeeded(mode, modelCount)

	for attempt := 0; attempt < maxDebitAttempts; attempt++ {
		now := s.now()

		w, err := s.load(ctx, userID, now)
		if err != nil {
			return nil, err
		}

		balance := w.Balance()
		if !credits.HasEnoughCredits(balance, needed) {
			return &ChargeResult{
				Charged:       false,
				CreditsNeeded: needed,
				Shortfall:     needed - balance.Total(),
				Balance:       balance,
			}, nil
		}

		deduction := credits.CalculateDeduction(balance, needed)

		updated, err := s.store.Deduct(ctx, userID, deduction, now)
		if errors.Is(err, ErrConcurrentUpdate) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &ChargeResult{
			Charged:       true,
			CreditsNeeded: needed,
			Deduction:     deduction,
			Balance:       updated.Balance(),
		}, nil
	}

	return nil, fmt.Errorf("debit for user %s: %w", userID, ErrConcurrentUpdate)
}

// refills every wallet whose free allowance is a day or more old
func (s *Service) ResetStaleDaily(ctx context.Context) (int64, error) {
	now := s.now()
	return s.store.ResetStaleDaily(ctx, now.Add(-24*time.Hour), now)
}

func (s *Service) load(ctx context.Context, userID string, now time.Time) (*Wallet, error) {
	w, err := s.store.Find(ctx, userID)
	if errors.Is(err, ErrWalletNotFound) {
		w, err = s.store.Create(ctx, userID, now)
	}
	if err != nil {
		return nil, err
	}

	if credits.DailyResetDue(w.LastDailyReset, now) {
		w, err = s.store.ResetDaily(ctx, userID, now.Add(-24*time.Hour), now)
		if err != nil {
			return nil, err
		}
	}

	return w, nil
}
