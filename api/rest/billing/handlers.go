package billing

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/internal/billing"
	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/errors"
	"codeberg.org/miriamlab/server/internal/logger"
)

// stripe payloads are small; anything larger is not a webhook
const maxWebhookBody = 65536

// CreateSubscriptionCheckout godoc
// @Summary Start a subscription checkout
// @Tags billing
// @Accept json
// @Produce json
// @Param request body SubscriptionCheckoutRequest true "Plan"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/billing/checkout/subscription [post]
// @Security BearerAuth
func CreateSubscriptionCheckout(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := customerFrom(c, provider)
		if !ok {
			return
		}

		var req SubscriptionCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		url, err := provider.CreateSubscriptionCheckout(c.Request.Context(), customer, credits.Plan(req.Plan))
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		c.JSON(http.StatusOK, CheckoutResponse{URL: url})
	}
}

// CreateTopupCheckout godoc
// @Summary Start a one-time credit pack checkout
// @Tags billing
// @Accept json
// @Produce json
// @Param request body TopupCheckoutRequest true "Pack"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/billing/checkout/topup [post]
// @Security BearerAuth
func CreateTopupCheckout(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer, ok := customerFrom(c, provider)
		if !ok {
			return
		}

		var req TopupCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		pack, found := credits.FindTopupPack(req.PackID)
		if !found {
			errors.BadRequest(c, "unknown top-up pack", nil)
			return
		}

		url, err := provider.CreateTopupCheckout(c.Request.Context(), customer, pack)
		if err != nil {
			respondCheckoutError(c, err)
			return
		}

		c.JSON(http.StatusOK, CheckoutResponse{URL: url})
	}
}

// StripeWebhook godoc
// @Summary Stripe webhook
// @Description Verifies the signature and applies subscription and top-up events. Repeated deliveries are acknowledged without effect
// @Tags billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe webhook signature"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/billing/webhook [post]
func StripeWebhook(provider Provider, applier Applier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if provider == nil {
			errors.ServiceUnavailable(c, "billing is not configured")
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			errors.BadRequest(c, "failed to read request body", nil)
			return
		}

		signature := c.GetHeader("Stripe-Signature")
		if signature == "" {
			errors.BadRequest(c, "missing Stripe-Signature header", nil)
			return
		}

		event, err := provider.ParseWebhook(c.Request.Context(), payload, signature)
		if err != nil {
			if billing.IsClientError(err) {
				logger.Warn("rejected billing webhook", "error", err)
				errors.BadRequest(c, "invalid webhook", nil)
				return
			}
			if stderrors.Is(err, billing.ErrInvalidEvent) {
				logger.Warn("ignored invalid billing event", "error", err)
				c.JSON(http.StatusOK, WebhookResponse{Received: true})
				return
			}
			// non-2xx makes stripe redeliver
			errors.InternalError(c, "failed to process webhook", err)
			return
		}

		if event == nil {
			c.JSON(http.StatusOK, WebhookResponse{Received: true})
			return
		}

		applied, err := applier.Apply(c.Request.Context(), *event)
		if err != nil {
			if stderrors.Is(err, billing.ErrInvalidEvent) {
				// redelivery will not fix a malformed event
				logger.Warn("ignored invalid billing event",
					"event_id", event.ID,
					"kind", event.Kind,
					"error", err,
				)
				c.JSON(http.StatusOK, WebhookResponse{Received: true})
				return
			}
			errors.InternalError(c, "failed to apply billing event", err)
			return
		}

		logger.Info("billing event processed",
			"event_id", event.ID,
			"kind", event.Kind,
			"user_id", event.UserID,
			"applied", applied,
		)

		c.JSON(http.StatusOK, WebhookResponse{Received: true, Applied: applied})
	}
}

func customerFrom(c *gin.Context, provider Provider) (billing.Customer, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return billing.Customer{}, false
	}

	if provider == nil {
		errors.ServiceUnavailable(c, "billing is not configured")
		return billing.Customer{}, false
	}

	return billing.Customer{UserID: userID, Email: auth.GetUserEmail(c)}, true
}

func respondCheckoutError(c *gin.Context, err error) {
	if stderrors.Is(err, billing.ErrNotConfigured) {
		errors.ServiceUnavailable(c, "this purchase is not available")
		return
	}
	errors.InternalError(c, "failed to create checkout session", err)
}
