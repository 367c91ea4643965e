package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/miriamlab/server/internal/events"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// the stream is server to client; peers only send control frames
	maxMessageSize = 512

	// open wallet streams allowed per user
	MaxConnectionsPerUser = 5
)

// Client streams one user's wallet events over a websocket connection.
type Client struct {
	UserID string

	conn *websocket.Conn
	sub  *events.Subscription
}
