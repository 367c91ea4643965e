package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/internal/errors"
	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/logger"
	ws "codeberg.org/miriamlab/server/internal/websocket"
)

const snapshotTimeout = 5 * time.Second

// WalletEventsHandler streams wallet.changed events for the caller. The first
// message is a snapshot of the current balance.
func WalletEventsHandler(bus Subscriber, balances BalanceReader, checkOrigin func(r *http.Request) bool) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		if bus.Subscribers(userID) >= ws.MaxConnectionsPerUser {
			errors.TooManyRequests(c, "too many open wallet streams")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), snapshotTimeout)
		w, err := balances.GetBalance(ctx, userID)
		cancel()
		if err != nil {
			errors.InternalError(c, "failed to load wallet", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader already wrote the error response
			logger.Warn("wallet stream upgrade failed", "user_id", userID, "error", err)
			return
		}

		logger.Info("wallet stream opened", "user_id", userID)

		snapshot := events.NewWalletChanged(userID, events.ReasonSnapshot, w.Balance(), time.Now())
		ws.NewClient(userID, conn, bus.Subscribe(userID)).Serve(&snapshot)

		logger.Info("wallet stream closed", "user_id", userID)
	}
}
