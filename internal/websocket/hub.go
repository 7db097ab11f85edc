package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-novelforge-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans generation progress out to websocket subscribers. Clients register
// per novel; Redis pub/sub relays updates across instances so a batch running
// on one node reaches watchers connected to another.
type Hub struct {
	// Registered clients map: NovelID -> List of Clients (multi-tab)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.NovelID] = append(h.clients[client.NovelID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"novel_id": client.NovelID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.NovelID]; ok {
				for i, c := range clients {
					if c == client {
						// Remove from slice
						h.clients[client.NovelID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.NovelID]) == 0 {
					delete(h.clients, client.NovelID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"novel_id": client.NovelID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastProgress pushes a progress payload to every watcher of the novel,
// locally and through Redis for other instances.
func (h *Hub) BroadcastProgress(novelID uuid.UUID, payload []byte) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "progress",
		"data": json.RawMessage(payload),
	})

	h.mu.RLock()
	clients, localFound := h.clients[novelID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"novel_id": novelID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	// Relay to other instances
	if h.rdb != nil {
		relay := map[string]interface{}{
			"target_novel_id": novelID.String(),
			"message":         data,
		}
		jsonRelay, _ := json.Marshal(relay)
		h.rdb.Publish(context.Background(), "cluster_progress", jsonRelay)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared channel; a message names its
	// target novel and each instance delivers to the watchers it holds.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_progress")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetNovelID string          `json:"target_novel_id"`
			Message       json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		nid, err := uuid.Parse(payload.TargetNovelID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[nid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
