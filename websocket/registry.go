// file: websocket/registry.go
package websocket

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codeclash/logger"
)

// WSConn is the subset of *websocket.Conn the registry needs; tests substitute
// a fake.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection wraps one participant's live channel. Writes are serialized with
// a mutex because broadcasts and heartbeat pings come from different
// goroutines.
type Connection struct {
	conn   WSConn
	userID string
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

func newConnection(conn WSConn, userID string) *Connection {
	return &Connection{conn: conn, userID: userID, done: make(chan struct{})}
}

// write marshals and sends one envelope. A closed connection is a silent
// no-op: delivery is best-effort, not at-least-once.
func (c *Connection) write(env Envelope) {
	out, err := json.Marshal(env)
	if err != nil {
		logger.Error.Printf("[registry] marshal error for user %s: %v", c.userID, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		logger.Debug.Printf("[registry] dropping %s for closed connection of user %s", env.Type, c.userID)
		return
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		logger.Warn.Printf("[registry] write deadline error for user %s: %v", c.userID, err)
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, out); err != nil {
		logger.Warn.Printf("[registry] write error for user %s: %v", c.userID, err)
	}
}

// ping sends a control ping, reporting failure so the heartbeat can give up.
func (c *Connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// close shuts the underlying channel once and signals the heartbeat to stop.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
}

// Sender delivers envelopes to participants; the coordinator only sees this
// interface so tests can capture traffic.
type Sender interface {
	Send(userID string, env Envelope)
}

// Registry maps a participant id to its single live connection. It outlives
// any one match: a participant keeps the same entry across matches.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*Connection
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Connection)}
}

// Register records the connection for a participant. A new connection
// replaces and closes any previous one: at most one live channel per id.
func (r *Registry) Register(userID string, c *Connection) {
	r.mu.Lock()
	old := r.conns[userID]
	r.conns[userID] = c
	r.mu.Unlock()

	if old != nil && old != c {
		logger.Warn.Printf("[registry] replacing live connection for user %s", userID)
		old.close()
	}
}

// Unregister removes the entry, but only if it still belongs to the given
// connection. A stale unregister from a replaced connection must not evict
// the replacement.
func (r *Registry) Unregister(userID string, c *Connection) {
	r.mu.Lock()
	if cur, ok := r.conns[userID]; ok && cur == c {
		delete(r.conns, userID)
	}
	r.mu.Unlock()
	c.close()
}

// Send delivers an envelope to a participant if a connection is registered
// and still open. Unknown participants are a silent no-op.
func (r *Registry) Send(userID string, env Envelope) {
	r.mu.Lock()
	c := r.conns[userID]
	r.mu.Unlock()
	if c == nil {
		logger.Debug.Printf("[registry] no connection for user %s, dropping %s", userID, env.Type)
		return
	}
	c.write(env)
}

// Count reports the number of registered connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
