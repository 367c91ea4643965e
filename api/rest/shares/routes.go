package shares

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/miriamlab/shares"
)

// baseURL is the public web origin share links point at
func RegisterRoutes(router *gin.RouterGroup, store shares.Store, baseURL string) {
	router.POST("/share", auth.AuthMiddleware(), ShareHandler(store, baseURL))
	router.GET("/results/:id", GetResultHandler(store))
}
