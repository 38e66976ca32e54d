// Package websocket test_helpers.go
//go:build unit

package websocket

import (
	"net"
	"sync"
	"time"
)

// fakeSender records every envelope the coordinator tries to deliver.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentEnvelope
}

type sentEnvelope struct {
	userID string
	env    Envelope
}

func (f *fakeSender) Send(userID string, env Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEnvelope{userID: userID, env: env})
}

// to returns every envelope sent to one participant.
func (f *fakeSender) to(userID string) []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Envelope
	for _, s := range f.sent {
		if s.userID == userID {
			out = append(out, s.env)
		}
	}
	return out
}

// ofType returns (recipient, envelope) pairs for one message type.
func (f *fakeSender) ofType(t MessageType) []sentEnvelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEnvelope
	for _, s := range f.sent {
		if s.env.Type == t {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// newTestCoordinator builds a coordinator over a fresh presence table and a
// capturing sender.
func newTestCoordinator() (*Coordinator, *fakeSender) {
	sender := &fakeSender{}
	return NewCoordinator(sender, NewPresenceTable()), sender
}

// fakeAddr satisfies net.Addr for the fake connection.
type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "fake:0" }

// fakeWSConn is an in-memory WSConn capturing writes.
type fakeWSConn struct {
	mu      sync.Mutex
	written [][]byte
	pings   int
	closed  bool
}

func (f *fakeWSConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if messageType == 9 { // ping
		f.pings++
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeWSConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeWSConn) ReadMessage() (int, []byte, error) { select {} }

func (f *fakeWSConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeWSConn) RemoteAddr() net.Addr { return fakeAddr{} }

func (f *fakeWSConn) SetReadLimit(int64) {}

func (f *fakeWSConn) SetReadDeadline(time.Time) error { return nil }

func (f *fakeWSConn) SetPongHandler(func(string) error) {}

func (f *fakeWSConn) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.written))
	copy(out, f.written)
	return out
}

func (f *fakeWSConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
