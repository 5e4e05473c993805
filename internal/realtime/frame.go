package realtime

import (
	"encoding/json"
	"fmt"
)

// Frame kinds accepted on the board socket. Inbound payloads are decoded
// once at the boundary into a tagged union; unknown types are rejected.
type FrameType string

const (
	FrameTaskCreated FrameType = "task_created"
	FrameTaskUpdated FrameType = "task_updated"
	FrameTaskMoved   FrameType = "task_moved"
	FrameTaskDeleted FrameType = "task_deleted"
	FramePing        FrameType = "ping"
	FramePong        FrameType = "pong"
)

// Frame is one decoded socket message. Raw keeps the original bytes so
// relay frames can be forwarded without re-encoding.
type Frame struct {
	Type FrameType
	Raw  []byte
}

// IsRelay reports whether the frame is a board sync event that should be
// fanned out to the room. Relay frames are treated as opaque payloads:
// clients doing optimistic local mutation reconcile later through the
// authoritative CRUD path.
func (f Frame) IsRelay() bool {
	switch f.Type {
	case FrameTaskCreated, FrameTaskUpdated, FrameTaskMoved, FrameTaskDeleted:
		return true
	}
	return false
}

// DecodeFrame parses a raw socket message into a Frame.
func DecodeFrame(data []byte) (Frame, error) {
	var envelope struct {
		Type FrameType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}

	switch envelope.Type {
	case FrameTaskCreated, FrameTaskUpdated, FrameTaskMoved, FrameTaskDeleted, FramePing:
		return Frame{Type: envelope.Type, Raw: data}, nil
	default:
		return Frame{}, fmt.Errorf("unknown frame type %q", envelope.Type)
	}
}

var pongPayload = []byte(`{"type":"pong"}`)
