package handler

import (
	"log"
	"net/http"
	"strings"

	"classboard/internal/middleware"
	"classboard/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	manager     *websocket.Manager
	authService AuthService
	upgrader    ws.Upgrader
	maxMessage  int64
}

func NewWebSocketHandler(manager *websocket.Manager, authService AuthService, readBuffer, writeBuffer int, maxMessage int64) *WebSocketHandler {
	return &WebSocketHandler{
		manager:     manager,
		authService: authService,
		maxMessage:  maxMessage,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection authenticates with ?token= (or a Bearer header) and
// registers the socket under the instructor. ?client_id= or X-Client-ID ties
// the socket to the client that sends mutations.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	if token == "" {
		log.Printf("[WebSocket] Missing authorization token")
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		log.Printf("[WebSocket] Token validation failed: %v", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = r.Header.Get(middleware.ClientIDHeader)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WebSocket] Failed to upgrade connection: %v", err)
		return
	}
	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}

	client := websocket.NewClient(uuid.New().String(), claims.UserID, clientID, conn, h.manager)

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// WebSocketMessageHandler answers client frames other than ping. The socket
// is a one-way invalidation feed, so anything else is reported back as an
// error message.
type WebSocketMessageHandler struct {
	manager *websocket.Manager
}

func NewWebSocketMessageHandler(manager *websocket.Manager) *WebSocketMessageHandler {
	return &WebSocketMessageHandler{
		manager: manager,
	}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeAck, websocket.TypePong:
		return nil
	default:
		log.Printf("unknown message type from %s: %s", client.ID, msg.Type)
		reply, err := websocket.NewMessage(websocket.TypeError, &websocket.ErrorPayload{
			Message: "unsupported message type: " + string(msg.Type),
		})
		if err != nil {
			return err
		}
		return h.manager.SendToClient(client.ID, reply)
	}
}
