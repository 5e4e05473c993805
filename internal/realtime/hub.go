// Package realtime implements the room registry and fan-out for the board
// socket. The hub is domain-agnostic: it moves opaque byte payloads between
// live connections grouped into rooms keyed by "team:<id>" or "user:<id>".
package realtime

import (
	"sync"

	"github.com/askar/teamboard/internal/logger"
)

// Hub maintains the set of live clients per room and broadcasts payloads
// to them. One hub is constructed per process and injected where needed;
// there is no package-level instance.
//
// A single mutex guards the registry. Subscribe, Unsubscribe and the
// dead-client removal inside Broadcast are mutually exclusive, so no caller
// observes a half-updated room. Because Broadcast holds the lock while it
// pushes into every client's send queue, payloads for one room reach the
// queues in the order broadcasts were accepted (FIFO per room); each
// client's writePump drains its queue in order. No cross-room ordering is
// promised.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]bool
	log   *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
		log:   log,
	}
}

// Subscribe registers the client under the room. Idempotent per client.
func (h *Hub) Subscribe(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[room]
	if !ok {
		clients = make(map[*Client]bool)
		h.rooms[room] = clients
	}
	clients[c] = true
}

// Unsubscribe removes the client from the room, discarding the room entry
// when it becomes empty so the registry never leaks. Safe to call more than
// once and for clients that were never subscribed.
func (h *Hub) Unsubscribe(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers payload to every client in the room except exclude.
// Delivery is best-effort per client: a client whose send queue is full or
// closed is dropped from the room and its queue closed, and delivery
// continues to the rest. One bad connection never stalls the broadcast.
func (h *Hub) Broadcast(room string, payload []byte, exclude *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	for c := range clients {
		if c == exclude {
			continue
		}
		if !c.enqueue(payload) {
			delete(clients, c)
			c.closeSend()
			h.log.Warn("dropping dead connection", "room", room, "user_id", c.userID)
		}
	}
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

// Publish broadcasts a server-originated payload to the whole room.
func (h *Hub) Publish(room string, payload []byte) {
	h.Broadcast(room, payload, nil)
}

// RoomSize returns the number of live clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}
