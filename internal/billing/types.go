package billing

import (
	"errors"
	"time"

	"codeberg.org/miriamlab/server/internal/credits"
)

// Kind is a provider-neutral billing event.
type Kind string

const (
	KindSubscriptionStarted  Kind = "subscription_started"
	KindSubscriptionRenewed  Kind = "subscription_renewed"
	KindSubscriptionCanceled Kind = "subscription_canceled"
	KindTopupCompleted       Kind = "topup_completed"
)

var (
	ErrInvalidEvent     = errors.New("invalid billing event")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrNotConfigured    = errors.New("billing is not configured")
)

// Event is a confirmed purchase or subscription change.
//
// ID is the idempotency key: applying two events with the same ID changes the wallet once.
// Subscription grants are keyed by subscription and billing period, so the several
// provider notifications for one renewal collapse into a single grant.
type Event struct {
	ID            string
	Kind          Kind
	UserID        string
	Plan          credits.Plan
	Credits       int
	RenewsAt      *time.Time
	AmountCents   int64
	CorrelationID string
	Metadata      map[string]any
}

// StripeConfig holds keys and price ids. Empty price ids disable the matching checkout.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceStarter  string
	PricePro      string
	PriceMini     string
	PriceStandard string
	PricePower    string
	SuccessURL    string
	CancelURL     string
}

func (c StripeConfig) Enabled() bool {
	return c.SecretKey != "" && c.WebhookSecret != ""
}

func (c StripeConfig) planPrice(p credits.Plan) string {
	switch p {
	case credits.PlanStarter:
		return c.PriceStarter
	case credits.PlanPro:
		return c.PricePro
	}
	return ""
}

func (c StripeConfig) packPrice(packID string) string {
	switch packID {
	case "mini":
		return c.PriceMini
	case "standard":
		return c.PriceStandard
	case "power":
		return c.PricePower
	}
	return ""
}

// maps a subscription price back to its plan
func (c StripeConfig) planForPrice(priceID string) (credits.Plan, bool) {
	switch {
	case priceID == "":
		return "", false
	case priceID == c.PriceStarter:
		return credits.PlanStarter, true
	case priceID == c.PricePro:
		return credits.PlanPro, true
	}
	return "", false
}
