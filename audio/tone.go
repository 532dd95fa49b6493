package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// Tone is a fixed-frequency sine streamer with a short attack envelope so
// starting it does not click
type Tone struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewTone creates a tone at freq Hz
func NewTone(sr beep.SampleRate, freq float64) *Tone {
	return &Tone{sr: sr, freq: freq}
}

func (g *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// 10ms linear attack
		envelope := math.Min(t/0.01, 1.0)
		sample := 0.2 * envelope * math.Sin(2*math.Pi*g.freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *Tone) Err() error {
	return nil
}
