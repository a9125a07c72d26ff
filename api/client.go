package api

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection. Its id is the player identity for
// every room it takes part in.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	outbox    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(h *Hub, id string, conn *websocket.Conn) *Client {
	return &Client{
		id:     id,
		hub:    h,
		conn:   conn,
		outbox: make(chan []byte, h.opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

// send queues a message without blocking. A client that cannot keep up is
// disconnected.
func (c *Client) send(t MessageType, payload any) {
	data, err := encode(t, payload)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", t, err)
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.outbox <- data:
	case <-c.done:
	default:
		log.Printf("Send buffer full for player %s, dropping connection", c.id)
		c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump processes inbound frames until the connection fails.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.close()
		c.hub.unregister(ctx, c)
		log.Printf("Closed connection for player %s", c.id)
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.opts.PongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Error reading message from %s: %v", c.id, err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			c.sendError(errMalformed)
			continue
		}
		c.hub.handle(ctx, c, msg)
	}
}

// writePump owns all writes to the connection, including keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error sending message to %s: %v", c.id, err)
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.flush()
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.hub.opts.WriteWait))
			return
		}
	}
}

// flush writes whatever is still queued so a final playerLeft or error is
// not lost on close.
func (c *Client) flush() {
	for {
		select {
		case data := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
