package notify

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one live websocket connection.
type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan any
	Done   chan struct{}
}

// Hub tracks at most one live connection per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]*Client)}
}

// AddClient registers conn for userID and closes any connection it replaces.
func (h *Hub) AddClient(userID int64, conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[userID]; ok {
		close(existing.Done)
		if existing.Conn != nil {
			existing.Conn.Close()
		}
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan any, 32),
		Done:   make(chan struct{}),
	}
	h.clients[userID] = client
	return client
}

// RemoveClient unregisters client unless a newer connection already
// replaced it.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.UserID]; ok && current == client {
		close(client.Done)
		delete(h.clients, client.UserID)
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// SendToUser queues message on the user's connection without blocking.
func (h *Hub) SendToUser(userID int64, message any) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %d is not online", userID)
	}

	select {
	case client.Send <- message:
		return nil
	case <-client.Done:
		return fmt.Errorf("user %d disconnected", userID)
	default:
		return fmt.Errorf("user %d message queue full", userID)
	}
}
