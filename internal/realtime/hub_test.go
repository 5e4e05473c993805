package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askar/teamboard/internal/logger"
)

func newTestHub() *Hub {
	return NewHub(logger.NewLogger("hub-test"))
}

// testClient builds a client with a buffered queue and no transport; the hub
// never touches the connection directly.
func testClient(h *Hub, userID int64) *Client {
	return &Client{
		hub:    h,
		send:   make(chan []byte, 8),
		userID: userID,
		log:    logger.NewLogger("hub-test"),
	}
}

// drain reads everything currently queued for a client.
func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case payload := <-c.send:
			out = append(out, payload)
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	h := newTestHub()
	c := testClient(h, 1)

	h.Subscribe("team:1", c)
	assert.Equal(t, 1, h.RoomSize("team:1"))

	// Subscribing twice does not double-count.
	h.Subscribe("team:1", c)
	assert.Equal(t, 1, h.RoomSize("team:1"))

	h.Unsubscribe("team:1", c)
	assert.Equal(t, 0, h.RoomSize("team:1"))

	// Unsubscribe is safe to repeat and safe for unknown rooms.
	h.Unsubscribe("team:1", c)
	h.Unsubscribe("team:404", c)
}

func TestEmptyRoomIsDiscarded(t *testing.T) {
	h := newTestHub()
	c := testClient(h, 1)

	h.Subscribe("team:1", c)
	h.Unsubscribe("team:1", c)

	h.mu.Lock()
	_, exists := h.rooms["team:1"]
	h.mu.Unlock()
	assert.False(t, exists)
}

func TestBroadcastExcludesSender(t *testing.T) {
	h := newTestHub()
	sender := testClient(h, 1)
	peer := testClient(h, 2)
	h.Subscribe("team:1", sender)
	h.Subscribe("team:1", peer)

	h.Broadcast("team:1", []byte(`{"type":"task_moved"}`), sender)

	assert.Empty(t, drain(sender))
	require.Len(t, drain(peer), 1)
}

func TestPublishReachesWholeRoom(t *testing.T) {
	h := newTestHub()
	a := testClient(h, 1)
	b := testClient(h, 2)
	other := testClient(h, 3)
	h.Subscribe("team:1", a)
	h.Subscribe("team:1", b)
	h.Subscribe("team:2", other)

	h.Publish("team:1", []byte("x"))

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
	// Rooms are isolated.
	assert.Empty(t, drain(other))
}

func TestBroadcastToUnknownRoomIsNoop(t *testing.T) {
	h := newTestHub()
	h.Publish("team:404", []byte("x"))
}

func TestBroadcastPreservesOrder(t *testing.T) {
	h := newTestHub()
	c := testClient(h, 1)
	h.Subscribe("team:1", c)

	h.Publish("team:1", []byte("one"))
	h.Publish("team:1", []byte("two"))
	h.Publish("team:1", []byte("three"))

	got := drain(c)
	require.Len(t, got, 3)
	assert.Equal(t, "one", string(got[0]))
	assert.Equal(t, "two", string(got[1]))
	assert.Equal(t, "three", string(got[2]))
}

// A client with a full queue is dropped from the room; the rest of the room
// still receives the payload, and the dead client's queue is closed.
func TestBroadcastDropsDeadClient(t *testing.T) {
	h := newTestHub()
	live := testClient(h, 1)
	dead := &Client{
		hub:    h,
		send:   make(chan []byte), // unbuffered with no reader: every enqueue fails
		userID: 2,
		log:    logger.NewLogger("hub-test"),
	}
	h.Subscribe("team:1", live)
	h.Subscribe("team:1", dead)
	require.Equal(t, 2, h.RoomSize("team:1"))

	h.Publish("team:1", []byte("x"))

	assert.Equal(t, 1, h.RoomSize("team:1"))
	assert.Len(t, drain(live), 1)

	// Queue closed exactly once; a second broadcast does not panic.
	_, open := <-dead.send
	assert.False(t, open)
	h.Publish("team:1", []byte("y"))
	assert.Len(t, drain(live), 1)
}

func TestEnqueueOnClosedQueue(t *testing.T) {
	h := newTestHub()
	c := testClient(h, 1)
	c.closeSend()

	// Racing a teardown must read as a failed delivery, not a panic.
	assert.False(t, c.enqueue([]byte("x")))
}

func TestCloseSendIdempotent(t *testing.T) {
	h := newTestHub()
	c := testClient(h, 1)
	c.closeSend()
	c.closeSend()
}
