package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	stripesubscription "github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"

	"codeberg.org/miriamlab/server/internal/credits"
)

// metadata keys written on checkout sessions and subscriptions
const (
	metaUserID  = "user_id"
	metaPlan    = "plan"
	metaPackID  = "pack_id"
	metaCredits = "credits"
)

// Stripe creates checkout sessions and converts verified webhooks into Events.
type Stripe struct {
	cfg StripeConfig

	newSession      func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getSubscription func(id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error)
}

func NewStripe(cfg StripeConfig) *Stripe {
	stripe.Key = cfg.SecretKey

	return &Stripe{
		cfg:             cfg,
		newSession:      checkoutsession.New,
		getSubscription: stripesubscription.Get,
	}
}

// Customer identifies who is buying.
type Customer struct {
	UserID string
	Email  string
}

// CreateSubscriptionCheckout returns the hosted checkout url for a paid plan.
func (s *Stripe) CreateSubscriptionCheckout(ctx context.Context, c Customer, plan credits.Plan) (string, error) {
	priceID := s.cfg.planPrice(plan)
	if priceID == "" {
		return "", fmt.Errorf("%w: no price for plan %s", ErrNotConfigured, plan)
	}

	metadata := map[string]string{
		metaUserID: c.UserID,
		metaPlan:   string(plan),
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(c.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		// copied onto the subscription so renewal and cancel events can find the user
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		Metadata:   metadata,
	}
	if c.Email != "" {
		params.CustomerEmail = stripe.String(c.Email)
	}
	params.Context = ctx

	sess, err := s.newSession(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// CreateTopupCheckout returns the hosted checkout url for a one-time credit pack.
func (s *Stripe) CreateTopupCheckout(ctx context.Context, c Customer, pack credits.TopupPack) (string, error) {
	priceID := s.cfg.packPrice(pack.ID)
	if priceID == "" {
		return "", fmt.Errorf("%w: no price for pack %s", ErrNotConfigured, pack.ID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(c.UserID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.SuccessURL),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		Metadata: map[string]string{
			metaUserID:  c.UserID,
			metaPackID:  pack.ID,
			metaCredits: strconv.Itoa(pack.Credits),
		},
	}
	if c.Email != "" {
		params.CustomerEmail = stripe.String(c.Email)
	}
	params.Context = ctx

	sess, err := s.newSession(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// ParseWebhook verifies the signature and maps the event. A nil Event with a nil
// error means the event type is not one we act on and should just be acknowledged.
func (s *Stripe) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.checkoutCompleted(ctx, event)
	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: failed to decode subscription: %w", ErrInvalidEvent, err)
		}
		return s.subscriptionRenewed(event, &sub), nil
	case "invoice.payment_succeeded":
		return s.invoicePaid(ctx, event)
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: failed to decode subscription: %w", ErrInvalidEvent, err)
		}
		return subscriptionCanceled(event, &sub), nil
	}

	return nil, nil
}

func (s *Stripe) checkoutCompleted(ctx context.Context, event stripe.Event) (*Event, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: failed to decode checkout session: %w", ErrInvalidEvent, err)
	}

	userID := sess.ClientReferenceID
	if userID == "" {
		userID = sess.Metadata[metaUserID]
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: checkout session %s has no user", ErrInvalidEvent, sess.ID)
	}

	switch sess.Mode {
	case stripe.CheckoutSessionModeSubscription:
		plan, ok := credits.ParsePlan(sess.Metadata[metaPlan])
		if !ok || !credits.PaidPlan(plan) {
			return nil, fmt.Errorf("%w: checkout session %s has no paid plan", ErrInvalidEvent, sess.ID)
		}
		if sess.Subscription == nil || sess.Subscription.ID == "" {
			return nil, fmt.Errorf("%w: checkout session %s has no subscription", ErrInvalidEvent, sess.ID)
		}

		params := &stripe.SubscriptionParams{}
		params.Context = ctx

		sub, err := s.getSubscription(sess.Subscription.ID, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch subscription %s: %w", sess.Subscription.ID, err)
		}

		return &Event{
			ID:            periodKey(sub, plan),
			Kind:          KindSubscriptionStarted,
			UserID:        userID,
			Plan:          plan,
			RenewsAt:      periodEnd(sub),
			AmountCents:   sess.AmountTotal,
			CorrelationID: sub.ID,
			Metadata: map[string]any{
				"stripe_event_id": event.ID,
				"session_id":      sess.ID,
			},
		}, nil

	case stripe.CheckoutSessionModePayment:
		packID := sess.Metadata[metaPackID]
		pack, ok := credits.FindTopupPack(packID)
		if !ok {
			return nil, fmt.Errorf("%w: checkout session %s has unknown pack %q", ErrInvalidEvent, sess.ID, packID)
		}

		correlation := sess.ID
		if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
			correlation = sess.PaymentIntent.ID
		}

		return &Event{
			ID:            "topup:" + sess.ID,
			Kind:          KindTopupCompleted,
			UserID:        userID,
			Credits:       pack.Credits,
			AmountCents:   sess.AmountTotal,
			CorrelationID: correlation,
			Metadata: map[string]any{
				"stripe_event_id": event.ID,
				"pack_id":         pack.ID,
			},
		}, nil
	}

	return nil, nil
}

func (s *Stripe) invoicePaid(ctx context.Context, event stripe.Event) (*Event, error) {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return nil, fmt.Errorf("%w: failed to decode invoice: %w", ErrInvalidEvent, err)
	}

	// one-off invoices carry no subscription
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return nil, nil
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := s.getSubscription(inv.Subscription.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription %s: %w", inv.Subscription.ID, err)
	}

	return s.subscriptionRenewed(event, sub), nil
}

// only active subscriptions on a known price renew the allotment
func (s *Stripe) subscriptionRenewed(event stripe.Event, sub *stripe.Subscription) *Event {
	userID := sub.Metadata[metaUserID]
	if userID == "" || sub.Status != stripe.SubscriptionStatusActive {
		return nil
	}

	plan, ok := s.cfg.planForPrice(firstPriceID(sub))
	if !ok {
		return nil
	}

	return &Event{
		ID:            periodKey(sub, plan),
		Kind:          KindSubscriptionRenewed,
		UserID:        userID,
		Plan:          plan,
		RenewsAt:      periodEnd(sub),
		CorrelationID: sub.ID,
		Metadata: map[string]any{
			"stripe_event_id": event.ID,
		},
	}
}

func subscriptionCanceled(event stripe.Event, sub *stripe.Subscription) *Event {
	userID := sub.Metadata[metaUserID]
	if userID == "" {
		return nil
	}

	return &Event{
		ID:            "cancel:" + sub.ID,
		Kind:          KindSubscriptionCanceled,
		UserID:        userID,
		Plan:          credits.PlanFree,
		CorrelationID: sub.ID,
		Metadata: map[string]any{
			"stripe_event_id": event.ID,
		},
	}
}

// one key per subscription, billing period and plan; a mid-period plan change is a new grant
func periodKey(sub *stripe.Subscription, plan credits.Plan) string {
	return fmt.Sprintf("sub:%s:%d:%s", sub.ID, sub.CurrentPeriodEnd, plan)
}

func periodEnd(sub *stripe.Subscription) *time.Time {
	if sub.CurrentPeriodEnd == 0 {
		return nil
	}
	t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	return &t
}

func firstPriceID(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return ""
	}
	return sub.Items.Data[0].Price.ID
}

// IsClientError reports whether a webhook request should be rejected outright.
// Only signature failures qualify; a signed event that cannot be applied is
// acknowledged instead, since redelivering it changes nothing.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}
