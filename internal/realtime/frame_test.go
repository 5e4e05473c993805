package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	raw := []byte(`{"type":"task_moved","id":7,"status":"done"}`)
	frame, err := DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, FrameTaskMoved, frame.Type)
	// Raw bytes survive untouched for relaying.
	assert.Equal(t, raw, frame.Raw)
}

func TestDecodeFrameUnknownType(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"type":"chat_message"}`))
	assert.Error(t, err)

	_, err = DecodeFrame([]byte(`{"type":""}`))
	assert.Error(t, err)

	// Pong is server-originated only; inbound pongs are rejected.
	_, err = DecodeFrame([]byte(`{"type":"pong"}`))
	assert.Error(t, err)
}

func TestDecodeFrameMalformed(t *testing.T) {
	_, err := DecodeFrame([]byte(`not json`))
	assert.Error(t, err)
}

func TestIsRelay(t *testing.T) {
	relay := []FrameType{FrameTaskCreated, FrameTaskUpdated, FrameTaskMoved, FrameTaskDeleted}
	for _, ft := range relay {
		assert.True(t, Frame{Type: ft}.IsRelay(), string(ft))
	}

	// Keep-alive traffic never fans out.
	assert.False(t, Frame{Type: FramePing}.IsRelay())
	assert.False(t, Frame{Type: FramePong}.IsRelay())
}
