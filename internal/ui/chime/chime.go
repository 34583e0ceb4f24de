// Package chime plays the short synthesized cues PawLock uses around a
// protection session: a warning tone before a countdown expires and a
// soft confirmation when the shield unlocks.
package chime

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// Player owns the speaker and mixes cue tones into it.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	enabled     bool
}

// NewPlayer creates a player. Call Initialize before playing.
func NewPlayer() *Player {
	return &Player{
		mixer:   &beep.Mixer{},
		enabled: true,
	}
}

// Initialize opens the speaker. Safe to call more than once.
func (player *Player) Initialize() error {
	player.mu.Lock()
	defer player.mu.Unlock()

	if player.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(player.mixer)
	player.initialized = true
	return nil
}

// SetEnabled toggles whether cues are audible.
func (player *Player) SetEnabled(enabled bool) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.enabled = enabled
}

// Cleanup silences all cues. The speaker itself stays open because beep
// offers no way to close it.
func (player *Player) Cleanup() {
	player.mu.Lock()
	defer player.mu.Unlock()

	if !player.initialized {
		return
	}
	player.mixer.Clear()
	player.initialized = false
}

// PlayWarning plays two descending tones warning that the countdown is
// about to expire.
func (player *Player) PlayWarning() {
	player.play(warningCue(sampleRate))
}

// PlayUnlock plays a short rising confirmation when the shield closes.
func (player *Player) PlayUnlock() {
	player.play(unlockCue(sampleRate))
}

func (player *Player) play(streamer beep.Streamer) {
	player.mu.Lock()
	defer player.mu.Unlock()

	if !player.initialized || !player.enabled {
		return
	}
	speaker.Lock()
	player.mixer.Add(streamer)
	speaker.Unlock()
}

func warningCue(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		newTone(880, time.Millisecond*180, rate),
		newSilence(time.Millisecond*60, rate),
		newTone(660, time.Millisecond*240, rate),
	)
}

func unlockCue(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		newTone(523.25, time.Millisecond*120, rate),
		newTone(783.99, time.Millisecond*160, rate),
	)
}

// tone is a sine oscillator with an attack/release envelope so cues
// start and stop without clicks.
type tone struct {
	freq     float64
	phase    float64
	rate     beep.SampleRate
	position int
	total    int
	attack   int
	release  int
}

func newTone(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	edge := rate.N(time.Millisecond * 10)
	if edge*2 > total {
		edge = total / 2
	}
	return &tone{
		freq:    freq,
		rate:    rate,
		total:   total,
		attack:  edge,
		release: edge,
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.total {
			return i, i > 0
		}

		volume := 0.25
		if t.position < t.attack {
			volume *= float64(t.position) / float64(t.attack)
		} else if remaining := t.total - t.position; remaining < t.release {
			volume *= float64(remaining) / float64(t.release)
		}

		value := volume * math.Sin(2*math.Pi*t.phase)
		samples[i][0] = value
		samples[i][1] = value

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase) // keep in [0, 1)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

type silence struct {
	remaining int
}

func newSilence(duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &silence{remaining: rate.N(duration)}
}

func (s *silence) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.remaining <= 0 {
			return i, i > 0
		}
		samples[i][0] = 0
		samples[i][1] = 0
		s.remaining--
	}
	return len(samples), true
}

func (s *silence) Err() error { return nil }
