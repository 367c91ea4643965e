//go:build ignore

// Usage: go run scripts/test_websocket.go <token> [host]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/miriamlab/server/internal/events"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/test_websocket.go <token> [host]")
		os.Exit(1)
	}

	token := os.Args[1]
	host := "localhost:8080"
	if len(os.Args) > 2 {
		host = os.Args[2]
	}

	u := url.URL{
		Scheme: "ws",
		Host:   host,
		Path:   "/api/v1/me/wallet/events",
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	fmt.Printf("Connecting to %s\n", u.String())

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("dial: %v (status %d)", err, resp.StatusCode)
		}
		log.Fatal("dial:", err)
	}
	defer c.Close()

	fmt.Println("Connected, waiting for wallet events (ctrl-c to quit)")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var event events.WalletChanged
			if err := c.ReadJSON(&event); err != nil {
				log.Println("read:", err)
				return
			}

			pretty, _ := json.MarshalIndent(event, "", "  ") //nolint:errcheck // debug output
			fmt.Printf("Received %s:\n%s\n", event.Reason, pretty)
		}
	}()

	select {
	case <-done:
		return
	case <-interrupt:
		fmt.Println("\nInterrupt received, closing connection...")

		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("write close:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
