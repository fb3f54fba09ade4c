package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Thamizhanban2006/code-clash/internal/events"
)

// Client is one websocket connection. Its ID doubles as the player's socketId
// inside room documents. Outbound messages go through the buffered send
// channel so broadcasts never block on a slow peer.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	// mu serializes enqueue against close so a broadcast racing a
	// disconnect never sends on the closed channel.
	mu     sync.Mutex
	closed bool

	logger *slog.Logger
}

func newClient(id string, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

// enqueue queues an already-marshaled frame. Reports false when the client is
// closed or its buffer is full, which the hub treats as a dead connection.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close shuts the send channel exactly once; writePump drains and exits.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func marshalEnvelope(event string, payload any) ([]byte, error) {
	return json.Marshal(events.Envelope{Event: event, Data: payload})
}
