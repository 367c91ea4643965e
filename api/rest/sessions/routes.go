package sessions

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/miriamlab/history"
)

func RegisterRoutes(router *gin.RouterGroup, store history.Store, plans PlanReader) {
	group := router.Group("/sessions")
	group.Use(auth.AuthMiddleware())
	{
		group.GET("", ListSessionsHandler(store, plans))
		group.POST("", CreateSessionHandler(store, plans))
	}
}
