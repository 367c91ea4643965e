package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/miriamlab/server/internal/auth"
)

func RegisterRoutes(router *gin.RouterGroup, bus Subscriber, balances BalanceReader, checkOrigin func(r *http.Request) bool) {
	router.GET("/me/wallet/events", auth.QueryTokenMiddleware(), WalletEventsHandler(bus, balances, checkOrigin))
}
