// Package billing turns confirmed payments into wallet changes.
package billing

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/metrics"
	"codeberg.org/miriamlab/server/miriamlab/ledger"
)

// Service applies billing events to wallets through the ledger.
type Service struct {
	ledger    ledger.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(store ledger.Store, publisher events.Publisher, m *metrics.Metrics) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Service{
		ledger:    store,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// Apply records the event and mutates the wallet atomically.
// applied is false when the event was already processed.
func (s *Service) Apply(ctx context.Context, ev Event) (bool, error) {
	entry, mutation, reason, err := s.translate(ev)
	if err != nil {
		s.metrics.RecordBillingEvent(string(ev.Kind), "error")
		return false, err
	}

	applied, w, err := s.ledger.Apply(ctx, entry, mutation)
	if err != nil {
		s.metrics.RecordBillingEvent(string(ev.Kind), "error")
		return false, fmt.Errorf("failed to apply %s event %s: %w", ev.Kind, ev.ID, err)
	}

	if !applied {
		s.metrics.RecordBillingEvent(string(ev.Kind), "duplicate")
		return false, nil
	}

	s.metrics.RecordBillingEvent(string(ev.Kind), "applied")

	if w != nil {
		s.publisher.Publish(ctx, events.NewWalletChanged(w.UserID, reason, w.Balance(), s.now()))
	}

	return true, nil
}

func (s *Service) translate(ev Event) (ledger.Entry, ledger.Mutation, string, error) {
	if ev.ID == "" || ev.UserID == "" {
		return ledger.Entry{}, ledger.Mutation{}, "", fmt.Errorf("%w: event id and user id are required", ErrInvalidEvent)
	}

	entry := ledger.Entry{
		EventID:       ev.ID,
		UserID:        ev.UserID,
		AmountCents:   ev.AmountCents,
		CorrelationID: ev.CorrelationID,
		Metadata:      ev.Metadata,
		CreatedAt:     s.now(),
	}

	switch ev.Kind {
	case KindSubscriptionStarted, KindSubscriptionRenewed:
		if !credits.PaidPlan(ev.Plan) {
			return ledger.Entry{}, ledger.Mutation{}, "", fmt.Errorf("%w: %q is not a paid plan", ErrInvalidEvent, ev.Plan)
		}

		monthly := credits.LimitsFor(ev.Plan).MonthlyCredits

		entry.EventType = ledger.EventStart
		if ev.Kind == KindSubscriptionRenewed {
			entry.EventType = ledger.EventRenew
		}
		entry.Plan = ev.Plan
		entry.CreditsAdded = monthly

		// the allotment replaces what is left; unused subscription credits do not roll over
		return entry, ledger.Mutation{
			SetSubscription: true,
			Plan:            ev.Plan,
			Subscription:    monthly,
			RenewsAt:        ev.RenewsAt,
		}, events.ReasonSubscription, nil

	case KindSubscriptionCanceled:
		entry.EventType = ledger.EventCancel
		entry.Plan = credits.PlanFree

		return entry, ledger.Mutation{
			SetSubscription: true,
			Plan:            credits.PlanFree,
			Subscription:    0,
			RenewsAt:        nil,
		}, events.ReasonSubscription, nil

	case KindTopupCompleted:
		if ev.Credits <= 0 {
			return ledger.Entry{}, ledger.Mutation{}, "", fmt.Errorf("%w: top-up must add credits", ErrInvalidEvent)
		}

		entry.EventType = ledger.EventTopup
		entry.Plan = ev.Plan
		entry.CreditsAdded = ev.Credits

		return entry, ledger.Mutation{AddTopup: ev.Credits}, events.ReasonTopup, nil
	}

	return ledger.Entry{}, ledger.Mutation{}, "", fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
}
