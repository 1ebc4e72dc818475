package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is a message pushed over the realtime channel.
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Publisher is the narrow outbound capability the lifecycle logic
// depends on. Delivery is best-effort: events to offline users are
// dropped, never queued.
type Publisher interface {
	PushToUser(userID string, event Event)
	BroadcastAll(event Event)
}

// wsConn is the subset of *websocket.Conn the hub writes to.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type wsClient struct {
	id     string
	userID string
	conn   wsConn
}

// Hub manages WebSocket connections and per-user channels.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient            // connection id -> client
	users   map[string]map[string]*wsClient // user id -> connection id -> client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*wsClient),
		users:   make(map[string]map[string]*wsClient),
	}
}

// Register adds a new connection. The connection receives broadcasts
// immediately but belongs to no user channel until Join is called.
func (h *Hub) Register(connID string, conn *websocket.Conn) {
	h.register(connID, conn)
}

func (h *Hub) register(connID string, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[connID] = &wsClient{id: connID, conn: conn}

	log.Debug().Str("conn_id", connID).Msg("WebSocket connection registered")
}

// Join associates a connection with a user's channel. Joining again
// with a different user moves the connection; it is never a member of
// two channels at once.
func (h *Hub) Join(connID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}

	if client.userID == userID {
		return
	}
	if client.userID != "" {
		h.leaveLocked(client)
	}

	client.userID = userID
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]*wsClient)
	}
	h.users[userID][connID] = client

	log.Info().Str("conn_id", connID).Str("user_id", userID).Msg("Connection joined user channel")
}

// Unregister removes a connection and its channel membership.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}

	h.leaveLocked(client)
	delete(h.clients, connID)
	client.conn.Close()

	log.Debug().Str("conn_id", connID).Msg("WebSocket connection unregistered")
}

// leaveLocked removes a client from its user channel. Caller holds mu.
func (h *Hub) leaveLocked(client *wsClient) {
	if client.userID == "" {
		return
	}
	if conns, ok := h.users[client.userID]; ok {
		delete(conns, client.id)
		if len(conns) == 0 {
			delete(h.users, client.userID)
		}
	}
	client.userID = ""
}

// IsOnline checks if a user has at least one joined connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// PushToUser sends an event to every connection joined to a user's
// channel. Offline users are skipped silently.
func (h *Hub) PushToUser(userID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.users[userID]))
	for _, c := range h.users[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	h.send(clients, data, event.Type)
}

// BroadcastAll sends an event to every connected client
func (h *Hub) BroadcastAll(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	h.send(clients, data, event.Type)
}

func (h *Hub) send(clients []*wsClient, data []byte, eventType string) {
	for _, c := range clients {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("conn_id", c.id).Str("type", eventType).Msg("Dropping dead connection")
			h.Unregister(c.id)
		}
	}
}

// Close closes every connection and empties the hub.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		c.conn.Close()
	}
	h.clients = make(map[string]*wsClient)
	h.users = make(map[string]map[string]*wsClient)
}
