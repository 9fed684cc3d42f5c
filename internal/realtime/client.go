package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"lbry-tech/internal/message"
	"lbry-tech/internal/metrics"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Must be less than pongWait.
	maxMessageSize = 64 * 1024           // Publish frames carry a full claim description.
	sendBuffer     = 32
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrSlowReader = errors.New("send buffer full")
)

// Router handles one decoded frame for a connection.
type Router interface {
	Route(ctx context.Context, raw []byte, out message.Responder)
}

// Client is a middleman between the websocket connection and the handlers.
// It implements message.Responder.
type Client struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	router Router

	// send is never closed; done signals shutdown instead so late
	// handler goroutines can call Send without panicking.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// ctx is cancelled when the connection closes. Handlers get a detached
	// copy so their upstream calls and alerts still finish.
	ctx    context.Context
	cancel context.CancelFunc

	metrics *metrics.Metrics
	logger  *slog.Logger
}

func newClient(ctx context.Context, id string, hub *Hub, conn *websocket.Conn, router Router, m *metrics.Metrics, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		ID:      id,
		hub:     hub,
		conn:    conn,
		router:  router,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		metrics: m,
		logger:  logger.With("conn_id", id),
	}
}

// Send queues env for delivery. After the connection has closed it is a
// no-op that returns ErrClosed.
func (c *Client) Send(env message.Envelope) error {
	select {
	case <-c.done:
		c.metrics.ResponseDropped()
		return ErrClosed
	default:
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		c.metrics.ResponseSent(string(env.Message))
		return nil
	case <-c.done:
		c.metrics.ResponseDropped()
		return ErrClosed
	default:
		c.metrics.ResponseDropped()
		c.logger.Warn("dropping response for slow client", "message", env.Message)
		return ErrSlowReader
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
}

// readPump reads frames until the socket fails. Every frame is routed on its
// own goroutine so a slow daemon call never blocks the next message. Closing
// the socket only turns the handler's Send into a no-op.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		go c.router.Route(context.WithoutCancel(c.ctx), raw, c)
	}
}

// writePump drains send onto the socket and keeps the connection alive with
// pings. Each envelope is written as its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
