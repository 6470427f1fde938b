package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/fibs-geotag/mapsync/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

const (
	sendChSize   = 10_000
	ackChSize    = 16
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// connection manages a WebSocket connection with a single write goroutine.
type connection struct {
	mu     sync.Mutex
	conn   *ws.Conn
	stop   chan struct{} // closed when conn is replaced
	sendCh chan []byte
	ackCh  chan streaming.AckMessage
	done   chan struct{} // closed on shutdown
	closed bool

	wsURL   string
	secret  string
	backoff time.Duration

	// replay returns the messages that rebuild the page after a reconnect.
	replay func() [][]byte
	// inbound receives every non-ack envelope read from the page.
	inbound func(streaming.Envelope)

	logger *slog.Logger
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		sendCh:  make(chan []byte, sendChSize),
		ackCh:   make(chan streaming.AckMessage, ackChSize),
		done:    make(chan struct{}),
		backoff: time.Second,
		logger:  logger,
	}
}

// dial connects to the WebSocket server and starts read/write loops.
func (c *connection) dial(rawURL, secret string) error {
	c.wsURL = rawURL
	c.secret = secret

	conn, err := c.dialOnce()
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.stop = stop
	c.mu.Unlock()

	go c.writeLoop(conn, stop)
	go c.readLoop(conn)

	return nil
}

// dialOnce performs a single WebSocket dial with the secret query param.
func (c *connection) dialOnce() (*ws.Conn, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if c.secret != "" {
		q := u.Query()
		q.Set("secret", c.secret)
		u.RawQuery = q.Encode()
	}

	conn, _, err := ws.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

// writeLoop drains sendCh and writes messages to conn. It returns on error,
// on shutdown, or when conn is replaced. A message taken after the
// replacement is dropped; its effect is part of the replay.
func (c *connection) writeLoop(conn *ws.Conn, stop chan struct{}) {
	for {
		select {
		case <-c.done:
			return
		case <-stop:
			return
		case data := <-c.sendCh:
			select {
			case <-stop:
				return
			default:
			}

			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("WebSocket SetWriteDeadline error", "error", err)
				go c.reconnect(conn)
				return
			}
			if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				go c.reconnect(conn)
				return
			}
		}
	}
}

// readLoop reads page messages. Acks go to ackCh, everything else to the
// inbound callback.
func (c *connection) readLoop(conn *ws.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			c.logger.Warn("WebSocket read error", "error", err)
			go c.reconnect(conn)
			return
		}

		var env streaming.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.logger.Debug("Malformed message received", "raw", string(message))
			continue
		}

		if env.Type == streaming.TypeAck {
			var ack streaming.AckMessage
			if err := json.Unmarshal(message, &ack); err != nil {
				continue
			}
			select {
			case c.ackCh <- ack:
			default:
				c.logger.Debug("Ack channel full, dropping", "for", ack.For)
			}
			continue
		}

		if c.inbound != nil {
			c.inbound(env)
		}
	}
}

// reconnect attempts to re-establish the WebSocket connection with
// exponential backoff. On success it replays the current page state and
// restarts the read/write loops. broken is the connection that failed; a
// second failure report for the same connection is ignored.
func (c *connection) reconnect(broken *ws.Conn) {
	c.mu.Lock()
	if c.closed || c.conn != broken {
		c.mu.Unlock()
		return
	}
	_ = c.conn.Close()
	c.conn = nil
	close(c.stop)
	c.mu.Unlock()

	backoff := c.backoff
	for attempt := 1; attempt <= maxReconnect; attempt++ {
		select {
		case <-c.done:
			return
		case <-time.After(backoff):
		}

		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", backoff)

		conn, err := c.dialOnce()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		if err := c.writeReplay(conn); err != nil {
			c.logger.Warn("Failed to replay page state after reconnect", "error", err)
			_ = conn.Close()
			continue
		}

		stop := make(chan struct{})
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.stop = stop
		c.mu.Unlock()

		c.logger.Info("WebSocket reconnected", "attempt", attempt)
		go c.writeLoop(conn, stop)
		go c.readLoop(conn)
		return
	}

	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

func (c *connection) writeReplay(conn *ws.Conn) error {
	if c.replay == nil {
		return nil
	}
	for _, data := range c.replay() {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
			return err
		}
	}
	return nil
}

// send pushes data to the write loop. Non-blocking; drops if channel full.
func (c *connection) send(data []byte) {
	select {
	case c.sendCh <- data:
	default:
		c.logger.Warn("WebSocket send channel full, dropping message")
	}
}

// sendAndWait sends data and blocks until the page acknowledges with a
// matching ack message or the timeout expires.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ack := <-c.ackCh:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", ackFor)
		case <-c.done:
			return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
		}
	}
}

// close sends a WebSocket close frame and shuts down all goroutines.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(
			ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		)
		return conn.Close()
	}
	return nil
}
