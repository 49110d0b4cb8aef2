package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chargerbridge/pkg/models"
)

// clientQueueSize bounds per-client buffering. A client that cannot keep up
// loses events rather than stalling the bridge's dispatch loop.
const clientQueueSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The shell connects from its own origin (file:// in the desktop case),
	// and the bridge binds locally; accept any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream upgrades the connection and forwards each BridgeEvent as one JSON
// message until the client disconnects. The subscription is released on
// disconnect so teardown is first-class, not fire-and-forget.
func (h *handlers) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "component", "API", "remote_addr", c.Request.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	slog.Info("Stream client connected", "component", "API", "remote_addr", c.Request.RemoteAddr)

	events := make(chan models.BridgeEvent, clientQueueSize)
	unsubscribe := h.bridge.Subscribe(func(event models.BridgeEvent) {
		select {
		case events <- event:
		default:
			slog.Warn("Stream client too slow, dropping event", "component", "API", "remote_addr", c.Request.RemoteAddr)
		}
	})
	defer unsubscribe()

	// Reader goroutine: we never expect client messages, but reading is how
	// the close handshake and a dropped connection are detected.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			slog.Info("Stream client disconnected", "component", "API", "remote_addr", c.Request.RemoteAddr)
			return
		case event := <-events:
			if err := conn.WriteJSON(event); err != nil {
				slog.Info("Stream write failed, closing", "component", "API", "remote_addr", c.Request.RemoteAddr, "error", err)
				return
			}
		}
	}
}
