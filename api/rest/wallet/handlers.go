package wallet

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/api/rest/pagination"
	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/internal/credits"
	"codeberg.org/miriamlab/server/internal/errors"
)

const (
	defaultUsageLimit   = 20
	maxUsageLimit       = 100
	billingHistoryLimit = 50
)

// GetWallet godoc
// @Summary Get the caller's wallet
// @Description Returns the credit balance, creating the wallet on first access and applying a due daily reset
// @Tags wallet
// @Produce json
// @Success 200 {object} WalletResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/me/wallet [get]
// @Security BearerAuth
func GetWallet(balances BalanceReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		w, err := balances.GetBalance(c.Request.Context(), userID)
		if err != nil {
			errors.InternalError(c, "failed to load wallet", err)
			return
		}

		c.JSON(http.StatusOK, WalletResponse{
			Wallet:       w,
			TotalCredits: w.Balance().Total(),
			Limits:       credits.LimitsFor(w.Plan),
		})
	}
}

// ListUsage godoc
// @Summary List the caller's charged actions
// @Tags wallet
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} UsageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/me/usage [get]
// @Security BearerAuth
func ListUsage(usageRepo UsageReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		params := pagination.FromQuery(c, defaultUsageLimit, maxUsageLimit)

		entries, total, err := usageRepo.ListByUser(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list usage", err)
			return
		}

		c.JSON(http.StatusOK, UsageResponse{
			Entries:    entries,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}

// ListBillingHistory godoc
// @Summary List the caller's billing ledger
// @Tags wallet
// @Produce json
// @Success 200 {object} BillingHistoryResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/me/billing [get]
// @Security BearerAuth
func ListBillingHistory(ledgerRepo LedgerReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		entries, err := ledgerRepo.ListByUser(c.Request.Context(), userID, billingHistoryLimit)
		if err != nil {
			errors.InternalError(c, "failed to list billing history", err)
			return
		}

		c.JSON(http.StatusOK, BillingHistoryResponse{Entries: entries})
	}
}

// GetPricing godoc
// @Summary Plans, top-up packs and per-action prices
// @Tags wallet
// @Produce json
// @Success 200 {object} PricingResponse
// @Router /api/v1/pricing [get]
func GetPricing(c *gin.Context) {
	c.JSON(http.StatusOK, PricingResponse{
		Plans:      credits.AllLimits(),
		TopupPacks: credits.TopupPacks(),
		Actions:    credits.PriceList(),
	})
}
