package interfaces

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

// WSConn abstracts a websocket connection for testability.
type WSConn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	// WriteControl writes a control frame (ping, pong, close) with a deadline.
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPingHandler(h func(appData string) error)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Channel is one of the gateway's two connections, delivering lifecycle and
// message events through a single tagged-event stream.
type Channel interface {
	Kind() schema.ChannelKind
	Connect(ctx context.Context) error
	// Events returns the tagged-event stream. The channel is closed once the
	// connection has fully shut down.
	Events() <-chan Event
	WriteJSON(ctx context.Context, v any) error
	// Ping sends a protocol-level ping frame.
	Ping() error
	State() schema.ConnState
	LastPong() time.Time
	// Close requests shutdown and waits for the read loop to confirm, bounded
	// by the timeout, after which the socket is forcibly closed.
	Close(timeout time.Duration) error
}

// EventKind tags a connection event.
type EventKind int

const (
	EventOpen EventKind = iota
	EventClose
	EventError
	EventMessage
	EventPing
	EventPong
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	case EventPing:
		return "ping"
	case EventPong:
		return "pong"
	default:
		return "unknown"
	}
}

// Event is a single inbound connection event consumed by the dispatcher.
type Event struct {
	Channel schema.ChannelKind
	Kind    EventKind
	Data    []byte // payload for EventMessage
	Err     error  // transport error for EventError
}

// WSShim adapts a real *websocket.Conn to WSConn.
type WSShim struct{ *websocket.Conn }

func (w WSShim) WriteJSON(v any) error { return w.Conn.WriteJSON(v) }
func (w WSShim) ReadMessage() (int, []byte, error) {
	return w.Conn.ReadMessage()
}
func (w WSShim) WriteMessage(messageType int, data []byte) error {
	return w.Conn.WriteMessage(messageType, data)
}
func (w WSShim) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return w.Conn.WriteControl(messageType, data, deadline)
}
func (w WSShim) SetReadDeadline(t time.Time) error           { return w.Conn.SetReadDeadline(t) }
func (w WSShim) SetPingHandler(h func(appData string) error) { w.Conn.SetPingHandler(h) }
func (w WSShim) SetPongHandler(h func(appData string) error) { w.Conn.SetPongHandler(h) }
func (w WSShim) Close() error                                { return w.Conn.Close() }
