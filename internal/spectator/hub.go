// ============================================================================
// cellbot - RCL robot maze runner
// ============================================================================
//
// Package:     spectator
// Description: WebSocket hub broadcasting live run frames to spectators
// Author:      msto63
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package spectator

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/pkg/core/logging"
)

const (
	// sendBuffer is the number of messages queued per spectator
	sendBuffer = 256

	writeWait  = 10 * time.Second
	pongWait   = 120 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WebSocket upgrader with permissive settings for local spectators
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope sent to spectators
type Message struct {
	Type    string      `json:"type"` // "hello", "frame", "report"
	Payload interface{} `json:"payload"`
}

// HelloPayload greets a newly connected spectator
type HelloPayload struct {
	Maze   string `json:"maze,omitempty"`
	RunID  string `json:"run_id,omitempty"`
	Frames int    `json:"frames"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans out run frames to all connected spectators. Spectators that
// cannot keep up are disconnected instead of slowing the run down.
type Hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    HelloPayload
	closed  bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		logger:  logging.New("cellbot-spectator"),
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected spectators
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Begin announces a new run to spectators
func (h *Hub) Begin(runID, mazeName string) {
	h.mu.Lock()
	h.last = HelloPayload{Maze: mazeName, RunID: runID}
	h.mu.Unlock()
	h.broadcast(Message{Type: "hello", Payload: h.hello()})
}

// Observe publishes a frame. Its signature matches runner.Observer.
func (h *Hub) Observe(frame runner.Frame) {
	h.mu.Lock()
	h.last.RunID = frame.RunID
	h.last.Frames++
	h.mu.Unlock()
	h.broadcast(Message{Type: "frame", Payload: frame})
}

// Finish publishes the final report of a run
func (h *Hub) Finish(report *runner.Report) {
	summary := *report
	summary.Frames = nil
	h.broadcast(Message{Type: "report", Payload: summary})
}

// Close disconnects all spectators
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) hello() HelloPayload {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode spectator message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow spectator", "remote", c.conn.RemoteAddr().String())
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades the connection and streams messages until the
// spectator leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if data, err := json.Marshal(Message{Type: "hello", Payload: h.hello()}); err == nil {
		c.send <- data
	}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("Spectator connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards incoming messages and detects disconnects
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error", "error", err)
			} else {
				h.logger.Info("Spectator disconnected")
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Error("WebSocket send error", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
