package api

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"powerfour/db"
)

// HubOptions tunes the websocket transport.
type HubOptions struct {
	// AllowedOrigins restricts the Origin header; empty allows any.
	AllowedOrigins []string
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	MaxMessageSize int64
	// NewID assigns player ids to connections. Defaults to uuid.NewString.
	NewID func() string
}

func (o HubOptions) withDefaults() HubOptions {
	if o.PingInterval <= 0 {
		o.PingInterval = 60 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 2 * time.Minute
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 16
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Hub is the set of live connections and the bridge between them and the
// room directory. Each server owns its own Hub.
type Hub struct {
	rooms    *db.Directory
	opts     HubOptions
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub builds a hub routing actions into rooms.
func NewHub(rooms *db.Directory, opts HubOptions) *Hub {
	opts = opts.withDefaults()
	h := &Hub{
		rooms:   rooms,
		opts:    opts,
		clients: make(map[string]*Client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == origin || allowed == u.Host {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and runs the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received WebSocket connection attempt from: %s", r.RemoteAddr)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Failed to upgrade connection:", err)
		return
	}

	c := newClient(h, h.opts.NewID(), conn)
	h.register(c)
	log.Printf("WebSocket connection established with: %s as player %s", r.RemoteAddr, c.id)

	go c.writePump()
	c.send(TypeConnected, ConnectedPayload{PlayerID: c.id})
	c.readPump(context.WithoutCancel(r.Context()))
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// unregister drops the connection and treats it as leaving its room.
func (h *Hub) unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	h.leaveCurrent(ctx, c)
}

func (h *Hub) client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

// sendTo delivers a message to one player if still connected.
func (h *Hub) sendTo(playerID string, t MessageType, payload any) {
	if c := h.client(playerID); c != nil {
		c.send(t, payload)
	}
}

// broadcast delivers a message to every listed player.
func (h *Hub) broadcast(playerIDs []string, t MessageType, payload any) {
	for _, id := range playerIDs {
		h.sendTo(id, t, payload)
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}
