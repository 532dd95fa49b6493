// Package audio provides sound kinds backed by the beep speaker. A machine
// without an audio device degrades gracefully: the context element registers
// in silent mode and its tones become inaudible no-ops instead of failing
// the mount.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is used when the context declares no rate option
const DefaultSampleRate = beep.SampleRate(48000)

// Engine owns the mixer attached to the speaker. One engine per process;
// the speaker is a process-wide device.
type Engine struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	silent bool
}

// NewEngine creates an unstarted engine. A rate of zero or below selects
// the default.
func NewEngine(rate beep.SampleRate) *Engine {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Engine{rate: rate, mixer: &beep.Mixer{}}
}

// Start opens the speaker and attaches the mixer. On failure the engine
// switches to silent mode and stays fully usable; the error is informational.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := speaker.Init(e.rate, e.rate.N(100*time.Millisecond)); err != nil {
		e.silent = true
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	speaker.Play(e.mixer)
	return nil
}

// Silent reports whether the engine runs without a device
func (e *Engine) Silent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.silent
}

// Rate returns the engine's sample rate
func (e *Engine) Rate() beep.SampleRate {
	return e.rate
}

// Play mixes a finite streamer; the mixer drops it once drained
func (e *Engine) Play(s beep.Streamer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lockSpeaker()
	e.mixer.Add(s)
	e.unlockSpeaker()
}

// PlayTone starts a looping tone and returns its control handle. Volume is
// a base-2 exponent: 0 is unity, each -1 halves the amplitude.
func (e *Engine) PlayTone(freq, volume float64) *Voice {
	ctrl := &beep.Ctrl{Streamer: NewTone(e.rate, freq)}
	vol := &effects.Volume{Streamer: ctrl, Base: 2, Volume: volume}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lockSpeaker()
	e.mixer.Add(vol)
	e.unlockSpeaker()
	return &Voice{engine: e, ctrl: ctrl, vol: vol}
}

// Stop silences and detaches every playing streamer
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lockSpeaker()
	e.mixer.Clear()
	e.unlockSpeaker()
}

// The speaker goroutine pulls the mixer concurrently once started; streamer
// mutations must hold its lock. In silent mode nothing pulls, but the lock
// is a plain mutex and stays cheap.
func (e *Engine) lockSpeaker()   { speaker.Lock() }
func (e *Engine) unlockSpeaker() { speaker.Unlock() }

// Voice is one playing tone's control handle
type Voice struct {
	engine *Engine
	ctrl   *beep.Ctrl
	vol    *effects.Volume
}

// SetPaused suspends or resumes the voice without losing its phase
func (v *Voice) SetPaused(paused bool) {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	v.engine.lockSpeaker()
	v.ctrl.Paused = paused
	v.engine.unlockSpeaker()
}

// Paused reports whether the voice is suspended
func (v *Voice) Paused() bool {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	v.engine.lockSpeaker()
	defer v.engine.unlockSpeaker()
	return v.ctrl.Paused
}

// SetVolume adjusts loudness as a base-2 exponent
func (v *Voice) SetVolume(volume float64) {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	v.engine.lockSpeaker()
	v.vol.Volume = volume
	v.engine.unlockSpeaker()
}

// Stop detaches the voice; the mixer drops it on the next pull
func (v *Voice) Stop() {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	v.engine.lockSpeaker()
	v.ctrl.Streamer = nil
	v.engine.unlockSpeaker()
}
