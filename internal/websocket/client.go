package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/miriamlab/server/internal/events"
	"codeberg.org/miriamlab/server/internal/logger"
)

func NewClient(userID string, conn *websocket.Conn, sub *events.Subscription) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		sub:    sub,
	}
}

// Serve sends snapshot (if any), then relays events until either side goes away.
// It blocks until the connection is closed.
func (c *Client) Serve(snapshot *events.WalletChanged) {
	go c.ReadPump()
	c.WritePump(snapshot)
}

// reads control frames only; ends the subscription when the peer disconnects
func (c *Client) ReadPump() {
	defer c.sub.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("wallet stream read error",
					"user_id", c.UserID,
					"error", err,
				)
			}
			return
		}
	}
}

// writes events from the subscription to the connection and keeps it alive with pings
func (c *Client) WritePump(snapshot *events.WalletChanged) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	if snapshot != nil {
		if err := c.write(*snapshot); err != nil {
			return
		}
	}

	for {
		select {
		case event, ok := <-c.sub.C:
			if !ok {
				// subscription closed by the read side
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))     //nolint:errcheck,gosec // G104: websocket timing
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			if err := c.write(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(event events.WalletChanged) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing
	return c.conn.WriteJSON(event)
}
