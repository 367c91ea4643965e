package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"codeberg.org/miriamlab/server/internal/logger"
)

const channelWalletEvents = "miriamlab:wallet-events"

type envelope struct {
	Origin string        `json:"origin"`
	Event  WalletChanged `json:"event"`
}

// RedisBridge shares wallet events between server instances. Events are
// delivered locally right away and relayed to other instances through Redis.
type RedisBridge struct {
	client *redis.Client
	local  *Bus
	origin string
}

func NewRedisBridge(client *redis.Client, local *Bus) *RedisBridge {
	return &RedisBridge{
		client: client,
		local:  local,
		origin: uuid.NewString(),
	}
}

func (r *RedisBridge) Publish(ctx context.Context, event WalletChanged) {
	r.local.Publish(ctx, event)

	payload, err := json.Marshal(envelope{Origin: r.origin, Event: event})
	if err != nil {
		logger.ErrorErr(err, "failed to encode wallet event", "user_id", event.UserID)
		return
	}

	if err := r.client.Publish(ctx, channelWalletEvents, payload).Err(); err != nil {
		logger.Warn("failed to relay wallet event",
			"user_id", event.UserID,
			"error", err,
		)
	}
}

// Run relays events published by other instances into the local bus until ctx is done.
func (r *RedisBridge) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, channelWalletEvents)
	defer pubsub.Close()

	// wait for the subscription to be confirmed so no event published after Run starts is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to wallet events: %w", err)
	}

	logger.Info("wallet event bridge started", "channel", channelWalletEvents)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.relay(ctx, msg.Payload)
		}
	}
}

func (r *RedisBridge) relay(ctx context.Context, payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logger.Warn("dropping malformed wallet event", "error", err)
		return
	}

	if env.Origin == r.origin {
		return
	}

	r.local.Publish(ctx, env.Event)
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
