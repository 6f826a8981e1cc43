// Package realtime pushes notifications to connected websocket clients.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	maxInboundBytes  = 512
	DefaultQueueSize = 16
)

// Envelope is the JSON frame written to clients.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	email string
	conn  *websocket.Conn
	send  chan Envelope
}

// Hub tracks live connections per recipient email.
// Publish never blocks: a client whose queue is full is disconnected.
type Hub struct {
	mu        sync.Mutex
	clients   map[string]map[*client]struct{}
	queueSize int
	upgrader  websocket.Upgrader
}

// NewHub creates a hub. checkOrigin may be nil to accept any origin.
func NewHub(queueSize int, checkOrigin func(*http.Request) bool) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:   make(map[string]map[*client]struct{}),
		queueSize: queueSize,
		upgrader:  websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// Serve upgrades the request and streams envelopes for email until the peer leaves.
// PRE: the caller has authorized email
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, email string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("realtime_event", "event", "upgrade_failed", "email", email, "error", err)
		return
	}
	c := &client{email: email, conn: conn, send: make(chan Envelope, h.queueSize)}
	c.send <- Envelope{Type: "connected", Data: map[string]string{"email": email}}
	h.register(c)
	slog.Info("realtime_event", "event", "connected", "email", email)

	go h.writeLoop(c)
	h.readLoop(c)
}

// Publish queues env for every connection of email and returns how many accepted it.
func (h *Hub) Publish(email string, env Envelope) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for c := range h.clients[email] {
		select {
		case c.send <- env:
			delivered++
		default:
			slog.Warn("realtime_event", "event", "slow_consumer_dropped", "email", email)
			h.removeLocked(c)
		}
	}
	return delivered
}

// Connections returns the number of live connections for email.
func (h *Hub) Connections(email string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[email])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.email]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.email] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked detaches c once; closing send tells writeLoop to hang up.
func (h *Hub) removeLocked(c *client) {
	set := h.clients[c.email]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.email)
	}
	close(c.send)
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		slog.Info("realtime_event", "event", "disconnected", "email", c.email)
	}()
	c.conn.SetReadLimit(maxInboundBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
