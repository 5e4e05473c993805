package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/askar/teamboard/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size.
	maxMessageSize = 4096

	// Outbound queue depth per connection.
	sendQueueSize = 256
)

// Client is one live socket bound to a room. Its lifetime ends on transport
// close, send failure or server shutdown; teardown (unsubscribe + close)
// runs exactly once regardless of which path triggers it.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	room   string
	userID int64
	log    *logger.Logger

	closeOnce    sync.Once
	teardownOnce sync.Once
}

// NewClient wraps an upgraded connection. The caller subscribes it and
// starts the pumps via Start.
func NewClient(hub *Hub, conn *websocket.Conn, room string, userID int64, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		room:   room,
		userID: userID,
		log:    log,
	}
}

// Start subscribes the client to its room and runs the pumps.
func (c *Client) Start() {
	c.hub.Subscribe(c.room, c)
	go c.writePump()
	go c.readPump()
}

// enqueue attempts a non-blocking push onto the send queue. A false return
// means the client is dead or too slow to keep up.
func (c *Client) enqueue(payload []byte) (ok bool) {
	defer func() {
		// Send on a closed channel: the client lost a race with its own
		// teardown. Treat as a failed delivery.
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// teardown releases everything the client holds. Guaranteed single-run.
func (c *Client) teardown() {
	c.teardownOnce.Do(func() {
		c.hub.Unsubscribe(c.room, c)
		c.closeSend()
		c.conn.Close()
	})
}

// readPump pumps inbound frames: pings get a direct pong, board sync frames
// are relayed to the rest of the room (the sender already applied the
// mutation locally), anything undecodable is skipped.
func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("socket closed unexpectedly", "room", c.room, "user_id", c.userID, "error", err)
			}
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			c.log.Debug("skipping bad frame", "room", c.room, "error", err)
			continue
		}

		switch {
		case frame.Type == FramePing:
			// Keep-alive only; answered directly, never broadcast.
			c.enqueue(pongPayload)
		case frame.IsRelay():
			c.hub.Broadcast(c.room, frame.Raw, c)
		}
	}
}

// writePump drains the send queue onto the wire and keeps the transport
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
