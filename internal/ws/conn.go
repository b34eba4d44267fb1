package ws

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/quantgate/binance-gateway/pkg/interfaces"
	"github.com/quantgate/binance-gateway/pkg/logger"
	"github.com/quantgate/binance-gateway/pkg/schema"
)

const (
	handshakeTimeout = 10 * time.Second
	controlWriteWait = 5 * time.Second
	eventBufferSize  = 256
)

var ErrNotConnected = errors.New("websocket not connected")

// Conn is one gateway connection. Socket callbacks are converted into tagged
// events on a single channel so the consumer can dispatch from one loop.
type Conn struct {
	kind   schema.ChannelKind
	url    string
	dialer *websocket.Dialer
	log    *logrus.Entry

	mu    sync.RWMutex
	conn  interfaces.WSConn
	state schema.ConnState

	healthMu sync.RWMutex
	lastPong time.Time

	events chan interfaces.Event
	stopCh chan struct{}
	done   chan struct{} // closed when the read loop has exited

	closeOnce sync.Once
}

// NewConn prepares a connection of the given kind. proxyURL may be empty, in
// which case the environment proxy settings apply.
func NewConn(kind schema.ChannelKind, wsURL, proxyURL string) *Conn {
	d := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: false},
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			d.Proxy = http.ProxyURL(u)
		}
	}
	return &Conn{
		kind:   kind,
		url:    wsURL,
		dialer: d,
		log:    logger.WithComponent(string(kind) + "_ws"),
		state:  schema.ConnClosed,
		events: make(chan interfaces.Event, eventBufferSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (c *Conn) Kind() schema.ChannelKind { return c.kind }

func (c *Conn) State() schema.ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Conn) LastPong() time.Time {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.lastPong
}

func (c *Conn) Events() <-chan interfaces.Event { return c.events }

// Connect dials the endpoint, installs ping/pong handlers and starts the read
// loop. It may be called once per Conn.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return errors.New("already connected")
	}
	c.state = schema.ConnConnecting
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.mu.Lock()
		c.state = schema.ConnClosed
		c.mu.Unlock()
		return err
	}

	wsConn := interfaces.WSShim{Conn: conn}
	c.setupPingPongHandlers(wsConn)

	c.mu.Lock()
	c.conn = wsConn
	c.state = schema.ConnOpen
	c.mu.Unlock()

	c.healthMu.Lock()
	c.lastPong = time.Now()
	c.healthMu.Unlock()

	c.emit(interfaces.Event{Channel: c.kind, Kind: interfaces.EventOpen})
	go c.readLoop()
	return nil
}

// setupPingPongHandlers converts protocol frames to events. Server pings are
// answered with pongs carrying the same payload.
func (c *Conn) setupPingPongHandlers(conn interfaces.WSConn) {
	conn.SetPingHandler(func(appData string) error {
		c.emit(interfaces.Event{Channel: c.kind, Kind: interfaces.EventPing})
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(controlWriteWait))
	})
	conn.SetPongHandler(func(string) error {
		c.healthMu.Lock()
		c.lastPong = time.Now()
		c.healthMu.Unlock()
		c.emit(interfaces.Event{Channel: c.kind, Kind: interfaces.EventPong})
		return nil
	})
}

func (c *Conn) readLoop() {
	defer close(c.done)
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			break
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stopCh:
				// 关闭流程中的读错误不算异常
			default:
				c.mu.Lock()
				c.state = schema.ConnErroring
				c.mu.Unlock()
				c.emit(interfaces.Event{Channel: c.kind, Kind: interfaces.EventError, Err: err})
			}
			break
		}
		c.emit(interfaces.Event{Channel: c.kind, Kind: interfaces.EventMessage, Data: data})
	}

	c.mu.Lock()
	c.state = schema.ConnClosed
	c.mu.Unlock()
	c.emit(interfaces.Event{Channel: c.kind, Kind: interfaces.EventClose})
	close(c.events)
}

// emit delivers an event without ever blocking the socket loop. A full buffer
// drops the event with a log entry.
func (c *Conn) emit(ev interfaces.Event) {
	select {
	case c.events <- ev:
	default:
		c.log.WithField("event", ev.Kind.String()).Warn("event buffer full, dropping event")
	}
}

// WriteJSON sends a JSON message over the connection.
func (c *Conn) WriteJSON(ctx context.Context, v any) error {
	c.mu.RLock()
	conn := c.conn
	state := c.state
	c.mu.RUnlock()
	if conn == nil || state != schema.ConnOpen {
		return ErrNotConnected
	}
	return conn.WriteJSON(v)
}

// Ping sends a protocol-level ping frame.
func (c *Conn) Ping() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(controlWriteWait))
}

// Close requests shutdown and waits for the read loop to confirm, bounded by
// the timeout, after which the socket is forcibly torn down.
func (c *Conn) Close(timeout time.Duration) error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopCh)

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		deadline := time.Now().Add(controlWriteWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)

		select {
		case <-c.done:
		case <-time.After(timeout):
			c.log.Warn("close timed out, aborting connection")
		}
		err = conn.Close()
	})
	return err
}
