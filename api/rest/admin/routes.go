package admin

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
)

// registers endpoints for external schedulers, guarded by CRON_SECRET
func RegisterRoutes(router *gin.RouterGroup, resetter DailyResetter, cronSecret string) {
	cron := router.Group("/cron")
	cron.Use(auth.SecretMiddleware(cronSecret))

	cron.GET("/daily-reset", DailyReset(resetter))
}
