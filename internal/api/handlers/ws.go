package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/realtime"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// EventsHandler upgrades clients to a websocket that receives every realtime
// event: fired alerts, price updates, sounds and notifications.
type EventsHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewEventsHandler creates an EventsHandler. Origins are checked against the
// CORS allow list; "*" accepts any origin.
func NewEventsHandler(hub *realtime.Hub, allowedOrigins []string, logger logger.Logger) *EventsHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger.With("component", "ws"),
	}
}

// Events handles websocket upgrades. Messages from the client are read and
// discarded; the connection is dropped when the client goes away.
//
// Endpoint: GET /ws
func (h *EventsHandler) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Debugf("websocket upgrade failed: %v", err)
		return
	}

	h.hub.AddClient(conn)
	h.logger.Debugf("client connected, %d total", h.hub.ClientCount())
	defer func() {
		h.hub.RemoveClient(conn)
		h.logger.Debugf("client disconnected, %d total", h.hub.ClientCount())
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
