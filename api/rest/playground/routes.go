package playground

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
)

// registers the metered playground routes; limit may be nil
func RegisterRoutes(router *gin.RouterGroup, engine Orchestrator, meter Meter, limit gin.HandlerFunc) {
	metered := router.Group("")
	metered.Use(auth.AuthMiddleware())
	if limit != nil {
		metered.Use(limit)
	}

	metered.POST("/charge", ChargeHandler(meter))
	metered.POST("/chat", ChatHandler(engine, meter))
	metered.POST("/compare", CompareHandler(engine, meter))
	metered.POST("/judge", JudgeHandler(engine, meter))
	metered.POST("/research", ResearchHandler(engine, meter))
}
