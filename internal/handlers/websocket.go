package handlers

import (
	"encoding/json"
	"net/http"

	"foodshare-backend/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub         *services.Hub
	userService *services.UserService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.Hub, userService *services.UserService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
	}
}

type wsInbound struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
}

// HandleWebSocket handles GET /ws?token=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	connID := uuid.New().String()
	h.hub.Register(connID, conn)
	defer h.hub.Unregister(connID)

	// The authenticated user is joined right away; an explicit join
	// message only re-joins (a reconnecting client sends one anyway).
	h.hub.Join(connID, userID)

	log.Info().Str("user_id", userID).Str("conn_id", connID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg wsInbound
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			continue
		}

		switch msg.Type {
		case "join":
			// Join is keyed on the authenticated identity, not the
			// client-supplied id; re-join replaces any prior channel.
			h.hub.Join(connID, userID)
		default:
			log.Debug().Str("user_id", userID).Str("type", msg.Type).Msg("Ignoring unknown message type")
		}
	}
}
