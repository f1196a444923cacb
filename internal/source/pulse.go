// internal/source/pulse.go
// Package source provides frame-sample sources standing in for the face
// tracking collaborator: a synthetic pulse generator and a CSV replay
// reader. Both emit samples with millisecond timestamps (time base 0.001).
package source

import (
	"errors"
	"math"

	"github.com/2samgu2/heartbeat-android/internal/rppg"
)

var (
	// ErrInvalidBPM indicates the simulated pulse rate must be positive
	ErrInvalidBPM = errors.New("pulse bpm must be positive")
	// ErrInvalidFPS indicates the simulated frame rate must be positive
	ErrInvalidFPS = errors.New("pulse fps must be positive")
	// ErrInvalidDuration indicates the simulated duration must be positive
	ErrInvalidDuration = errors.New("pulse duration must be positive")
)

// Source yields one sample per video frame until exhausted.
type Source interface {
	Next() (rppg.Sample, bool)
}

// PulseConfig holds configuration for the synthetic pulse source.
type PulseConfig struct {
	BPM      float64 // simulated heart rate
	FPS      float64 // simulated camera frame rate
	Duration float64 // seconds of output
	Channels int     // 1 or 3
	Noise    float64 // deterministic noise amplitude
	Drift    float64 // slow baseline drift amplitude
	// RescanInterval raises the resync flag on this cadence in seconds,
	// the way the tracking collaborator would; 0 disables it
	RescanInterval float64
}

// DefaultPulseConfig returns a 72 BPM subject filmed at 30 fps for 30 s.
func DefaultPulseConfig() PulseConfig {
	return PulseConfig{
		BPM:      72,
		FPS:      30,
		Duration: 30,
		Channels: 1,
		Noise:    0.02,
		Drift:    0.5,
	}
}

// Pulse generates a synthetic skin-brightness signal: per-channel baseline
// plus a sinusoidal pulse component, slow drift and cheap deterministic
// noise.
type Pulse struct {
	config     PulseConfig
	frame      int
	frames     int
	lastRescan int64
}

// Per-channel baselines and pulse amplitudes; the pulse component is
// strongest in green, as in skin reflectance.
var (
	pulseBaseline = [3]float64{90, 120, 75}
	pulseAmp      = [3]float64{0.3, 1.0, 0.2}
)

// NewPulse creates a synthetic pulse source.
func NewPulse(cfg PulseConfig) (*Pulse, error) {
	if cfg.BPM <= 0 {
		return nil, ErrInvalidBPM
	}
	if cfg.FPS <= 0 {
		return nil, ErrInvalidFPS
	}
	if cfg.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if cfg.Channels != 1 && cfg.Channels != 3 {
		return nil, rppg.ErrInvalidChannels
	}
	return &Pulse{
		config: cfg,
		frames: int(cfg.Duration * cfg.FPS),
	}, nil
}

// Next returns the next frame's sample, false once the duration elapses.
func (p *Pulse) Next() (rppg.Sample, bool) {
	if p.frame >= p.frames {
		return rppg.Sample{}, false
	}

	t := float64(p.frame) / p.config.FPS
	ts := int64(math.Round(t * 1000))
	pulse := math.Sin(2 * math.Pi * p.config.BPM / 60 * t)
	drift := p.config.Drift * math.Sin(2*math.Pi*0.1*t)
	noise := p.config.Noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	values := make([]float64, p.config.Channels)
	for ch := range values {
		idx := ch
		if p.config.Channels == 1 {
			idx = 1 // single-channel output is the green signal
		}
		values[ch] = pulseBaseline[idx] + pulseAmp[idx]*pulse + drift + noise
	}

	resync := false
	if p.config.RescanInterval > 0 && p.frame > 0 &&
		float64(ts-p.lastRescan)*0.001 >= p.config.RescanInterval {
		resync = true
		p.lastRescan = ts
	}

	p.frame++
	return rppg.Sample{Values: values, Timestamp: ts, Resync: resync}, true
}

func fract(x float64) float64 { return x - math.Floor(x) }
