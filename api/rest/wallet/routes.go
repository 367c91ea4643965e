package wallet

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, balances BalanceReader, usageRepo UsageReader, ledgerRepo LedgerReader) {
	router.GET("/pricing", GetPricing)

	me := router.Group("/me")
	me.Use(auth.AuthMiddleware())
	{
		me.GET("/wallet", GetWallet(balances))
		me.GET("/usage", ListUsage(usageRepo))
		me.GET("/billing", ListBillingHistory(ledgerRepo))
	}
}
