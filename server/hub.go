package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/milk9111/listeningjourney/engine"
)

const (
	clientBuffer = 16
	writeTimeout = 200 * time.Millisecond
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans published frames out to websocket clients. A client that falls
// a full buffer behind is dropped.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	last     engine.FrameState
	hasLast  bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:  map[*client]struct{}{},
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Publish implements engine.Publisher. Frames are only encoded while at
// least one client listens.
func (h *Hub) Publish(fs engine.FrameState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = fs
	h.hasLast = true
	if len(h.clients) == 0 {
		return
	}
	b, err := json.Marshal(fs)
	if err != nil {
		log.Error().Str("component", "hub").Err(err).Msg("encode frame")
		return
	}
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			log.Warn().Str("component", "hub").Msg("dropping slow client")
			delete(h.clients, c)
			c.close()
		}
	}
}

// Last returns the most recent frame, if any was published.
func (h *Hub) Last() (engine.FrameState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.hasLast
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams frames until the client leaves.
// The latest frame is sent first so a new client never starts blank.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Str("component", "hub").Err(err).Msg("upgrade")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.hasLast {
		if b, err := json.Marshal(h.last); err == nil {
			c.send <- b
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	go h.readLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Str("component", "hub").Err(err).Msg("write frame")
			h.remove(c)
			return
		}
	}
}

// readLoop only watches for the client going away.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
