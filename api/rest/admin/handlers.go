package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/errors"
)

// DailyReset godoc
// @Summary Refill stale free daily allowances
// @Description Same sweep the in-process scheduler runs; safe to call repeatedly
// @Tags admin
// @Produce json
// @Success 200 {object} DailyResetResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/cron/daily-reset [get]
// @Security CronSecret
func DailyReset(resetter DailyResetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := resetter.RunDailyReset(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "daily reset failed", err)
			return
		}

		c.JSON(http.StatusOK, DailyResetResponse{Reset: n})
	}
}
