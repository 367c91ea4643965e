package billing

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
)

// provider is nil when Stripe is not configured; the routes then answer 503
func RegisterRoutes(router *gin.RouterGroup, provider Provider, applier Applier) {
	checkout := router.Group("/billing/checkout")
	checkout.Use(auth.AuthMiddleware())
	{
		checkout.POST("/subscription", CreateSubscriptionCheckout(provider))
		checkout.POST("/topup", CreateTopupCheckout(provider))
	}

	// signature-verified, no bearer auth
	router.POST("/billing/webhook", StripeWebhook(provider, applier))
}
