// file: websocket/handler.go
package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"codeclash/logger"
)

// connection tuning
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

// allowedOrigins gates browser handshakes. Empty means any origin, for
// deployments where the proxy already enforces same-origin.
var allowedOrigins []string

// SetAllowedOrigins installs the origin allowlist. Call before serving.
func SetAllowedOrigins(origins []string) {
	allowedOrigins = origins
}

func originAllowed(r *http.Request) bool {
	if len(allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// non-browser clients send no Origin; the userId gate still applies
		return true
	}
	for _, allowed := range allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin: originAllowed,
}

// Handler owns the upgrade path and per-connection read loops.
type Handler struct {
	registry    *Registry
	coordinator *Coordinator
}

// NewHandler builds the WebSocket entry point around a registry and the
// coordinator that consumes its events.
func NewHandler(registry *Registry, coordinator *Coordinator) *Handler {
	return &Handler{registry: registry, coordinator: coordinator}
}

// ServeWs upgrades the request and starts the read loop. A connection without
// a userId query parameter is rejected before any message exchange.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		logger.Warn.Println("[ServeWs] missing userId; rejecting WebSocket connection")
		http.Error(w, "userId is required", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}
	logger.Info.Printf("[ServeWs] user %s connected from %v", userID, wsConn.RemoteAddr())

	c := newConnection(wsConn, userID)
	h.registry.Register(userID, c)
	publishActiveConnections(h.registry.Count())

	go startHeartbeat(c)
	go h.readLoop(c)
}

// readLoop consumes frames until the connection drops, then applies
// disconnect semantics to every match the participant was in.
func (h *Handler) readLoop(c *Connection) {
	defer func() {
		logger.Warn.Printf("[readLoop] user %s disconnected", c.userID)
		h.registry.Unregister(c.userID, c)
		h.coordinator.HandleDisconnect(c.userID)
		publishActiveConnections(h.registry.Count())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, msg, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readLoop] read error for user %s: %v", c.userID, err)
			return
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readLoop] ignoring non-text messageType=%d from %s", messageType, c.userID)
			continue
		}
		h.coordinator.HandleEvent(c.userID, msg)
	}
}
