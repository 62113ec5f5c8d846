package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"propertybot/internal/models"
	"propertybot/internal/services"
)

type chatReplier interface {
	Reply(ctx context.Context, message string) (*models.ChatResponse, error)
}

// Hub serves the chat protocol over websockets: every text frame carries a
// ChatRequest and is answered by exactly one ChatResponse or ErrorResponse
// frame, in order.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]struct{}
	chat        chatReplier
	upgrader    websocket.Upgrader
}

// NewHub accepts upgrades from allowedOrigin, from any origin when it is
// "*", and from clients that send no Origin header (non-browser hosts).
func NewHub(chat chatReplier, allowedOrigin string) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]struct{}),
		chat:        chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(conn)
	defer h.unregisterConnection(conn)

	requestID := r.Header.Get("X-Request-ID")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if err := conn.WriteJSON(h.answer(r.Context(), data, requestID)); err != nil {
			log.Printf("WebSocket write failed: %v", err)
			return
		}
	}
}

func (h *Hub) answer(ctx context.Context, data []byte, requestID string) interface{} {
	var req models.ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errorFrame("VALIDATION_ERROR", "Invalid request body", requestID)
	}

	resp, err := h.chat.Reply(ctx, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return errorFrame("VALIDATION_ERROR", "No message provided", requestID)
		}
		log.Printf("WebSocket chat failed: %v", err)
		return errorFrame("SEARCH_ERROR", "Failed to search properties", requestID)
	}
	return resp
}

func errorFrame(code, message, requestID string) models.ErrorResponse {
	return models.ErrorResponse{Error: models.APIError{Code: code, Message: message, RequestID: requestID}}
}

func (h *Hub) registerConnection(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = struct{}{}
	log.Printf("WebSocket connected: %s (total: %d)", conn.RemoteAddr(), len(h.connections))
}

func (h *Hub) unregisterConnection(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	delete(h.connections, conn)
	log.Printf("WebSocket disconnected: %s", conn.RemoteAddr())
}

// Connections reports how many clients are connected.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// Close disconnects every client; their handlers return on the next read.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
}
