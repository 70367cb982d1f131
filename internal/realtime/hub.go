// Package realtime pushes tracker events to connected browser clients.
package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event types sent to clients.
const (
	EventAlertFired          = "alert.fired"
	EventPortfolioUpdated    = "portfolio.updated"
	EventSoundPlay           = "sound.play"
	EventSoundStop           = "sound.stop"
	EventNotificationShow    = "notification.show"
	EventNotificationClose   = "notification.close"
	EventPermissionRequested = "notification.permission"
)

// Event is the envelope of every message on the socket.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(eventType string, data any)
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub tracks connected clients and broadcasts events to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		now:     time.Now,
	}
}

func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	h.mu.Unlock()
}

func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish wraps data in an Event and broadcasts it.
func (h *Hub) Publish(eventType string, data any) {
	h.BroadcastJSON(Event{Type: eventType, Data: data, At: h.now().UTC()})
}

// BroadcastJSON writes v to every client. Clients that fail a write are dropped.
func (h *Hub) BroadcastJSON(v any) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		err := c.conn.WriteJSON(v)
		c.mu.Unlock()
		if err != nil {
			h.RemoveClient(c.conn)
		}
	}
}
