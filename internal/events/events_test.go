package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/miriamlab/server/internal/credits"
)

func testEvent(userID string, free int) WalletChanged {
	return NewWalletChanged(userID, ReasonCharge, credits.Balance{FreeDaily: free, Plan: credits.PlanFree}, time.Now())
}

func receive(t *testing.T, sub *Subscription) WalletChanged {
	t.Helper()

	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return WalletChanged{}
	}
}

func TestBus_DeliversOnlyToOwner(t *testing.T) {
	bus := NewBus()
	alice := bus.Subscribe("alice")
	bob := bus.Subscribe("bob")
	defer alice.Close()
	defer bob.Close()

	bus.Publish(context.Background(), testEvent("alice", 7))

	ev := receive(t, alice)
	assert.Equal(t, TypeWalletChanged, ev.Type)
	assert.Equal(t, 7, ev.Balance.FreeDaily)

	select {
	case <-bob.C:
		t.Fatal("bob should not receive alice's event")
	default:
	}
}

func TestBus_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("u")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			bus.Publish(context.Background(), testEvent("u", i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked")
	}

	assert.Len(t, sub.C, subscriberBuffer)
}

func TestSubscription_CloseUnregisters(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("u")
	assert.Equal(t, 1, bus.Subscribers("u"))

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, bus.Subscribers("u"))
	_, ok := <-sub.C
	assert.False(t, ok)

	bus.Publish(context.Background(), testEvent("u", 1))
}

func TestRedisBridge_RelaysBetweenInstances(t *testing.T) {
	mr := miniredis.RunT(t)

	newClient := func() *redis.Client {
		c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = c.Close() })
		return c
	}

	busA, busB := NewBus(), NewBus()
	bridgeA := NewRedisBridge(newClient(), busA)
	bridgeB := NewRedisBridge(newClient(), busB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = bridgeB.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("")) > 0
	}, 2*time.Second, 10*time.Millisecond)

	subA := busA.Subscribe("u")
	subB := busB.Subscribe("u")
	defer subA.Close()
	defer subB.Close()

	bridgeA.Publish(ctx, testEvent("u", 4))

	assert.Equal(t, 4, receive(t, subA).Balance.FreeDaily)
	assert.Equal(t, 4, receive(t, subB).Balance.FreeDaily)
}

func TestRedisBridge_IgnoresOwnEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	bus := NewBus()
	bridge := NewRedisBridge(client, bus)
	sub := bus.Subscribe("u")
	defer sub.Close()

	payload := `{"origin":"` + bridge.origin + `","event":{"type":"wallet.changed","user_id":"u"}}`
	bridge.relay(context.Background(), payload)
	bridge.relay(context.Background(), "not json")

	assert.Len(t, sub.C, 0)

	payload = `{"origin":"other","event":{"type":"wallet.changed","user_id":"u"}}`
	bridge.relay(context.Background(), payload)

	assert.Equal(t, "u", receive(t, sub).UserID)
}
