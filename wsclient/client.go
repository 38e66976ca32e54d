// Package wsclient is a reconnecting client for the match channel. It drives
// an explicit connection state machine so callers can dial once and let the
// client ride out server restarts.
// file: wsclient/client.go
package wsclient

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codeclash/logger"
)

// State is the client's position in the connect/retry cycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBackoff:
		return "backoff"
	default:
		return "disconnected"
	}
}

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// Client maintains one channel connection, redialing with exponential backoff
// after any failure. Received text frames are handed to OnMessage.
type Client struct {
	URL       string
	OnMessage func(data []byte)
	OnState   func(state State)

	dialer         *websocket.Dialer
	initialBackoff time.Duration
	maxBackoff     time.Duration
	backoff        time.Duration

	mu    sync.Mutex
	state State
	conn  *websocket.Conn
}

// New builds a client for the given channel URL. Both callbacks are optional.
func New(url string) *Client {
	return &Client{
		URL:            url,
		dialer:         websocket.DefaultDialer,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		backoff:        initialBackoff,
	}
}

// State reports the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send writes one text frame. It fails when the client is not connected;
// callers are expected to retry after the next connected transition.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Run drives the state machine until ctx ends:
// disconnected -> connecting -> connected -> backoff -> connecting -> ...
// The backoff delay doubles on every consecutive failure and resets after a
// successful connect.
func (c *Client) Run(ctx context.Context) {
	defer c.setState(StateDisconnected)

	for {
		if ctx.Err() != nil {
			return
		}

		c.setState(StateConnecting)
		conn, _, err := c.dialer.DialContext(ctx, c.URL, nil)
		if err != nil {
			logger.Warn.Printf("[wsclient] dial %s failed: %v", c.URL, err)
			if !c.waitBackoff(ctx) {
				return
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.backoff = c.initialBackoff
		c.mu.Unlock()
		c.setState(StateConnected)

		c.readUntilClosed(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if !c.waitBackoff(ctx) {
			return
		}
	}
}

// readUntilClosed pumps inbound frames until the connection drops or ctx ends.
func (c *Client) readUntilClosed(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn.Printf("[wsclient] connection lost: %v", err)
			}
			return
		}
		if c.OnMessage != nil {
			c.OnMessage(data)
		}
	}
}

// waitBackoff sleeps the current backoff delay, doubling it for next time up
// to the cap. Returns false when ctx ended during the wait.
func (c *Client) waitBackoff(ctx context.Context) bool {
	c.mu.Lock()
	delay := c.backoff
	c.backoff *= 2
	if c.backoff > c.maxBackoff {
		c.backoff = c.maxBackoff
	}
	c.mu.Unlock()

	c.setState(StateBackoff)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed && c.OnState != nil {
		c.OnState(s)
	}
}
