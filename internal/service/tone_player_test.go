package service

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"virtual_classroom_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	messages [][]byte
}

func (s *captureSink) Broadcast(message []byte) {
	s.messages = append(s.messages, message)
}

func TestHubTonePlayerBroadcastsRenderedTone(t *testing.T) {
	sink := &captureSink{}
	player := NewHubTonePlayer(sink, 8000)

	player.Play(session.BreakChime())
	require.Len(t, sink.messages, 1)

	var msg toneMessage
	require.NoError(t, json.Unmarshal(sink.messages[0], &msg))
	assert.Equal(t, "tone", msg.Type)
	assert.Equal(t, "chime", msg.Name)
	assert.Equal(t, 8000, msg.SampleRate)

	pcm, err := base64.StdEncoding.DecodeString(msg.PCM16)
	require.NoError(t, err)
	// 500 ms chime at 8 kHz, two bytes per sample.
	assert.Equal(t, 4000*2, len(pcm))
}

func TestHubTonePlayerSkipsEmptyTones(t *testing.T) {
	sink := &captureSink{}
	player := NewHubTonePlayer(sink, 8000)

	player.Play(session.Tone{Name: "silent"})
	assert.Empty(t, sink.messages)
}
