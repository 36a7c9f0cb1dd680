package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHubDeliversToRegisteredClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	a := &Client{hub: hub, adminID: "a", send: make(chan []byte, 4)}
	b := &Client{hub: hub, adminID: "b", send: make(chan []byte, 4)}
	hub.register <- a
	hub.register <- b
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish("order_created", map[string]interface{}{"product": "Pizza"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.send:
			var ev FeedEvent
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.Equal(t, "order_created", ev.Type)
			assert.Equal(t, "Pizza", ev.Data.(map[string]interface{})["product"])
		case <-time.After(time.Second):
			t.Fatalf("client %s got nothing", c.adminID)
		}
	}

	hub.unregister <- a
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	_, open := <-a.send
	assert.False(t, open)

	cancel()
	<-done
	_, open = <-b.send
	assert.False(t, open)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := &Client{hub: hub, adminID: "slow", send: make(chan []byte)}
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("message_processed", nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
