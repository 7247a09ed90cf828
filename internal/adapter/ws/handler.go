// Package ws pushes decision and consensus events to dashboard clients
// over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds a single broadcast write per client.
const writeTimeout = 5 * time.Second

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks active WebSocket clients and fans broadcasts out to them.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]context.CancelFunc
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]context.CancelFunc),
	}
}

// HandleWS upgrades the request to a WebSocket connection and registers
// it with the hub. Clients only receive; anything they send is drained
// and ignored.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		_ = c.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	h.conns[c] = cancel
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	go h.readLoop(ctx, c)
}

// readLoop consumes inbound frames so pings are answered and
// disconnects are noticed promptly.
func (h *Hub) readLoop(ctx context.Context, c *websocket.Conn) {
	defer func() {
		h.drop(c)
		_ = c.Close(websocket.StatusNormalClosure, "")
	}()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			return
		}
	}
}

// Broadcast sends a message to every connected client. Clients that
// fail the write are dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.Write(wctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			slog.Debug("websocket write failed", "error", err)
			h.drop(c)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Shutdown closes every connection and rejects further upgrades.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c, cancel := range h.conns {
		cancel()
		_ = c.Close(websocket.StatusGoingAway, "shutting down")
		delete(h.conns, c)
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cancel, ok := h.conns[c]; ok {
		cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected")
	}
}
