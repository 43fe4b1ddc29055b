package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"maxwavex-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans leaderboard updates out to websocket clients. Connections are
// grouped by game type; each group shares one redis subscription that is
// opened on the first connection and cancelled when the last one leaves.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	redisClient *redis.Client
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

// HandleWebSocket upgrades the connection and subscribes it to live
// leaderboard updates for the requested game type. The feed carries only
// public leaderboard data, so no authentication is required.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameType := r.URL.Query().Get("gameType")
	if gameType == "" {
		http.Error(w, "gameType query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(gameType, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(gameType, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(gameType string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[gameType] = append(h.connections[gameType], conn)

	// Start pub/sub subscription if this is the first watcher for this game
	if len(h.connections[gameType]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[gameType] = cancel
		go h.subscribeToPubSub(ctx, gameType)
	}

	log.Printf("WebSocket connected: leaderboard %s (total: %d)", gameType, len(h.connections[gameType]))
}

func (h *Hub) unregisterConnection(gameType string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[gameType]
	for i, c := range conns {
		if c == conn {
			h.connections[gameType] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more watchers, cancel pub/sub
	if len(h.connections[gameType]) == 0 {
		delete(h.connections, gameType)
		if cancel, ok := h.cancelFuncs[gameType]; ok {
			cancel()
			delete(h.cancelFuncs, gameType)
		}
	}

	log.Printf("WebSocket disconnected: leaderboard %s", gameType)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, gameType string) {
	pubsub := h.redisClient.Subscribe(ctx, services.LeaderboardChannel(gameType))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(gameType, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(gameType string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[gameType] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
