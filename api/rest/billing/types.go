package billing

import (
	"context"

	"codeberg.org/miriamlab/server/internal/billing"
	"codeberg.org/miriamlab/server/internal/credits"
)

// Provider is the payment provider side: hosted checkout and verified webhooks.
type Provider interface {
	CreateSubscriptionCheckout(ctx context.Context, c billing.Customer, plan credits.Plan) (string, error)
	CreateTopupCheckout(ctx context.Context, c billing.Customer, pack credits.TopupPack) (string, error)
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*billing.Event, error)
}

// Applier applies a confirmed billing event to the wallet, once per event id.
type Applier interface {
	Apply(ctx context.Context, ev billing.Event) (bool, error)
}

type SubscriptionCheckoutRequest struct {
	Plan string `json:"plan" binding:"required,oneof=starter pro"`
}

type TopupCheckoutRequest struct {
	PackID string `json:"pack_id" binding:"required"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
	Applied  bool `json:"applied"`
}
