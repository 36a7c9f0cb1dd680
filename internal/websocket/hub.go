package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the Redis channel feed events are relayed on.
const ClusterChannel = "cluster_events"

// FeedEvent is one entry of the live admin feed.
type FeedEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

type clusterEnvelope struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

// Hub fans feed events out to every connected admin. Run owns the client
// set; everything else talks to it through channels.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliver    chan []byte

	count int
	mu    sync.RWMutex

	// Redis relays events between instances; nil means single instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan []byte, 256),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))
			h.logger.Info("Hub", "Admin feed client registered", map[string]interface{}{"admin": client.adminID, "clients": len(h.clients)})

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Info("Hub", "Admin feed client unregistered", map[string]interface{}{"admin": client.adminID})
			}

		case data := <-h.deliver:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"admin": client.adminID})
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Publish delivers an event to local clients and relays it to other instances.
// It never blocks on slow clients; when the delivery queue is full the event is dropped.
func (h *Hub) Publish(eventType string, data interface{}) {
	payload, err := json.Marshal(FeedEvent{Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode feed event", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}
	h.enqueue(payload)

	if h.rdb != nil {
		envelope, _ := json.Marshal(clusterEnvelope{Origin: h.instanceID, Message: payload})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, envelope).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay feed event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) enqueue(payload []byte) {
	select {
	case h.deliver <- payload:
	default:
		h.logger.Warn("Hub", "Delivery queue full, dropping feed event", nil)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		// Our own events were already delivered locally.
		if envelope.Origin == h.instanceID {
			continue
		}
		h.enqueue(envelope.Message)
	}
}
