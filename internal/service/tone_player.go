package service

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"virtual_classroom_backend/internal/session"
)

// ToneBroadcaster is the fan-out sink rendered tone cues are shipped to.
// Satisfied by SessionHub.
type ToneBroadcaster interface {
	Broadcast(message []byte)
}

// HubTonePlayer renders engine tone cues (camera alert burst, break chime) to
// 16-bit mono PCM and broadcasts them on the session hub so browser clients
// can play them without bundling the samples.
type HubTonePlayer struct {
	sink       ToneBroadcaster
	sampleRate int
}

func NewHubTonePlayer(sink ToneBroadcaster, sampleRate int) *HubTonePlayer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &HubTonePlayer{sink: sink, sampleRate: sampleRate}
}

type toneMessage struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	SampleRate int    `json:"sampleRate"`
	PCM16      string `json:"pcm16"` // base64, little-endian int16
}

func (p *HubTonePlayer) Play(t session.Tone) {
	samples := session.SynthesizePCM(t, p.sampleRate)
	if len(samples) == 0 {
		return
	}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	data, err := json.Marshal(toneMessage{
		Type:       "tone",
		Name:       t.Name,
		SampleRate: p.sampleRate,
		PCM16:      base64.StdEncoding.EncodeToString(buf),
	})
	if err != nil {
		return
	}
	p.sink.Broadcast(data)
}
