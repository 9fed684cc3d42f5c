// Package realtime owns the websocket connections: upgrading, the read and
// write pumps, and the registry that closes every socket on shutdown.
package realtime

import (
	"context"
	"log/slog"
	"sync/atomic"

	"lbry-tech/internal/metrics"
)

// Hub tracks live clients. Only Run touches the clients map.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	// done is closed when Run returns; sends to register/unregister must
	// select on it so nothing blocks after shutdown.
	done  chan struct{}
	count atomic.Int64

	// ctx parents every client context and is cancelled when Run returns.
	ctx    context.Context
	cancel context.CancelFunc

	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHub(m *metrics.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		ctx:        ctx,
		cancel:     cancel,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
}

// Run serves register and unregister requests until ctx is cancelled, then
// closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer h.cancel()
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Add(1)
			h.metrics.ConnectionOpened()
			h.logger.Debug("client connected", "conn_id", client.ID, "live", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.count.Add(-1)
				h.metrics.ConnectionClosed()
				client.close()
				h.logger.Debug("client disconnected", "conn_id", client.ID, "live", len(h.clients))
			}

		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				h.metrics.ConnectionClosed()
				client.close()
			}
			h.count.Store(0)
			h.logger.Info("hub stopped")
			return
		}
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Register adds c to the hub. It reports false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes it. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}
