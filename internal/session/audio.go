package session

import (
	"math"
	"time"
)

// Tone is a short synthesized cue. Frequencies sound simultaneously; the
// camera alert is a two-tone burst, breaks end on a single chime.
type Tone struct {
	Name        string
	Frequencies []float64 // Hz
	Duration    time.Duration
	Volume      float64 // 0..1
}

// CameraAlertBurst is the repeating compliance alert played while the camera
// is off.
func CameraAlertBurst() Tone {
	return Tone{
		Name:        "camera-alert",
		Frequencies: []float64{880, 1100},
		Duration:    300 * time.Millisecond,
		Volume:      0.6,
	}
}

// BreakChime marks the end of a break or breakout countdown.
func BreakChime() Tone {
	return Tone{
		Name:        "chime",
		Frequencies: []float64{523.25, 659.25},
		Duration:    500 * time.Millisecond,
		Volume:      0.4,
	}
}

// TonePlayer renders tones to whatever audio sink the host wires in. The
// engine only guarantees when tones play and that repeating alerts stop.
type TonePlayer interface {
	Play(t Tone)
}

// NullPlayer discards tones. Used by headless hosts and observer sessions.
type NullPlayer struct{}

func (NullPlayer) Play(Tone) {}

// SynthesizePCM renders a tone into signed 16-bit mono samples so hosts with
// a real audio device can play it without an audio dependency of their own.
func SynthesizePCM(t Tone, sampleRate int) []int16 {
	n := int(float64(sampleRate) * t.Duration.Seconds())
	if n <= 0 || len(t.Frequencies) == 0 {
		return nil
	}
	vol := t.Volume
	if vol <= 0 || vol > 1 {
		vol = 0.5
	}
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		ts := float64(i) / float64(sampleRate)
		var v float64
		for _, f := range t.Frequencies {
			v += math.Sin(2 * math.Pi * f * ts)
		}
		v = v / float64(len(t.Frequencies)) * vol
		// linear fade over the last 10% avoids a click on cutoff
		if tail := float64(n) * 0.9; float64(i) > tail {
			v *= (float64(n) - float64(i)) / (float64(n) - tail)
		}
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}

// alarm repeats the camera alert burst until stopped. It owns no timer of its
// own; the scheduler task is keyed so camera-state exit cancels it.
type alarm struct {
	sched  *Scheduler
	player TonePlayer
	key    string
}

func newAlarm(sched *Scheduler, player TonePlayer, key string) *alarm {
	return &alarm{sched: sched, player: player, key: key}
}

func (a *alarm) start(interval time.Duration) {
	burst := CameraAlertBurst()
	a.player.Play(burst)
	a.sched.Every(a.key, interval, func() {
		a.player.Play(burst)
	})
}

func (a *alarm) stop() {
	a.sched.Cancel(a.key)
}
