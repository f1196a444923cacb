// internal/rppg/pipeline.go
// Package rppg implements remote-photoplethysmography heart-rate estimation
// from a stream of timestamped face-region brightness samples.
package rppg

import (
	"errors"
	"math"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidMode indicates an unknown extraction mode
	ErrInvalidMode = errors.New("extraction mode must be green or chrominance")
	// ErrInvalidSmoothPasses indicates smoothing passes must be positive
	ErrInvalidSmoothPasses = errors.New("smoothing passes must be positive")
	// ErrInvalidLambda indicates the detrend regularizer must be non-negative
	ErrInvalidLambda = errors.New("detrend lambda must be non-negative")
	// ErrChannelMismatch indicates the sample channel count does not match the pipeline
	ErrChannelMismatch = errors.New("sample channel count does not match pipeline")
)

// ExtractionMode selects how buffered channels become the pulse signal.
type ExtractionMode string

const (
	// ModeGreen estimates from the green channel after denoise, detrend
	// and moving-average smoothing
	ModeGreen ExtractionMode = "green"
	// ModeChrominance estimates from the adaptive chrominance combination
	// of all three channels
	ModeChrominance ExtractionMode = "chrominance"
)

// DefaultWindowSeconds is the time span of the rolling signal window.
const DefaultWindowSeconds = 10

// Default BPM search band.
const (
	DefaultLowBPM  = 42
	DefaultHighBPM = 240
)

// ReportCallback receives each aggregated heart-rate report. Invoked from
// the frame-processing path; must be fast and non-blocking.
type ReportCallback func(Report)

// Tracer receives per-frame diagnostic rows for external logging. All
// methods are invoked synchronously from the processing path.
type Tracer interface {
	TraceSignal(time int64, raw, denoised, detrended, smoothed []float64)
	TraceSpectrum(time int64, low, high int, mags []float64)
	TraceEstimate(Estimate)
	TraceReport(Report)
}

// Config holds pipeline configuration. All values are fixed at
// construction; invalid values are programmer errors surfaced by New.
type Config struct {
	// Mode selects the extraction path (green or chrominance)
	Mode ExtractionMode
	// Channels is the number of values per sample (1 or 3); chrominance
	// requires 3
	Channels int
	// TimeBase converts timestamp units to seconds (e.g. 0.001 for ms)
	TimeBase float64
	// SamplingFrequency is the report interval in seconds
	SamplingFrequency float64
	// WindowSeconds is the rolling window span (0 uses the default)
	WindowSeconds float64
	// LowBPM/HighBPM bound the spectral peak search (0 uses the defaults)
	LowBPM  float64
	HighBPM float64
	// DetrendLambda is the smoothness-priors regularizer; 0 means use the
	// measured sampling rate, matching the reference behavior
	DetrendLambda float64
	// SmoothPasses is the moving-average repetition count (0 uses 3)
	SmoothPasses int
}

// Pipeline is the frame-driven estimation state machine. It is not safe
// for concurrent use; the caller must serialize Process calls, which is
// natural in a camera-callback-per-frame model.
type Pipeline struct {
	config    Config
	buffer    *Buffer
	validator *NoiseValidator
	estimator *SpectralEstimator
	agg       *Aggregator

	callback ReportCallback
	tracer   Tracer
	log      *logrus.Entry
}

// New creates a pipeline from the given configuration.
func New(cfg Config) (*Pipeline, error) {
	if cfg.WindowSeconds == 0 {
		cfg.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.LowBPM == 0 {
		cfg.LowBPM = DefaultLowBPM
	}
	if cfg.HighBPM == 0 {
		cfg.HighBPM = DefaultHighBPM
	}
	if cfg.SmoothPasses == 0 {
		cfg.SmoothPasses = 3
	}

	switch cfg.Mode {
	case ModeGreen:
	case ModeChrominance:
		if cfg.Channels != 3 {
			return nil, ErrChannelMismatch
		}
	default:
		return nil, ErrInvalidMode
	}
	if cfg.SmoothPasses < 0 {
		return nil, ErrInvalidSmoothPasses
	}
	if cfg.DetrendLambda < 0 {
		return nil, ErrInvalidLambda
	}

	buffer, err := NewBuffer(cfg.Channels, cfg.WindowSeconds, cfg.TimeBase)
	if err != nil {
		return nil, err
	}
	validator, err := NewNoiseValidator(cfg.Channels)
	if err != nil {
		return nil, err
	}
	estimator, err := NewSpectralEstimator(cfg.LowBPM, cfg.HighBPM)
	if err != nil {
		return nil, err
	}
	agg, err := NewAggregator(cfg.SamplingFrequency, cfg.TimeBase)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:    cfg,
		buffer:    buffer,
		validator: validator,
		estimator: estimator,
		agg:       agg,
		log:       logrus.WithField("component", "rppg"),
	}, nil
}

// SetCallback sets the report callback. Set before feeding frames.
func (p *Pipeline) SetCallback(cb ReportCallback) {
	p.callback = cb
}

// SetTracer attaches a diagnostic tracer. Set before feeding frames.
func (p *Pipeline) SetTracer(tr Tracer) {
	p.tracer = tr
}

// Process feeds one frame's sample through the pipeline: artifact
// validation, buffering, filtering, spectral estimation and windowed
// aggregation. All numerically degenerate conditions are absorbed locally;
// the worst outcome is no estimate this frame.
func (p *Pipeline) Process(s Sample) error {
	if len(s.Values) != p.config.Channels {
		return ErrChannelMismatch
	}

	// A sample the validator rejects is still buffered, so the window
	// keeps spanning real time, but with its resync flag forced on so
	// the denoiser absorbs the artifact step on the next pass.
	if !p.validate(s) {
		s.Resync = true
	}
	p.buffer.Append(s)

	if !p.buffer.Ready() {
		return nil
	}

	fps := p.buffer.Rate()
	now := s.Timestamp

	signal := p.extract(fps, now)
	if len(signal) > 0 {
		mags := Magnitudes(signal)
		if bpm, ok := p.estimator.PeakBPM(mags, fps); ok {
			est := Estimate{Timestamp: now, BPM: bpm}
			p.agg.Add(est)
			if p.tracer != nil {
				low, high := p.estimator.Band(len(mags), fps)
				p.tracer.TraceSpectrum(now, low, high, mags)
				p.tracer.TraceEstimate(est)
			}
			p.log.WithFields(logrus.Fields{
				"fps":     fps,
				"samples": len(signal),
				"bpm":     bpm,
			}).Debug("point estimate")
		}
	}

	if p.agg.Due(now) {
		if rep, ok := p.agg.Flush(now); ok {
			p.log.WithFields(logrus.Fields{
				"mean": rep.Mean,
				"min":  rep.Min,
				"max":  rep.Max,
			}).Info("heart rate report")
			if p.tracer != nil {
				p.tracer.TraceReport(rep)
			}
			if p.callback != nil {
				p.callback(rep)
			}
		}
	}
	return nil
}

// validate classifies the newest sample per channel against the buffered
// window. Returns true when every channel accepts it. Samples are accepted
// unconditionally until the window spans enough time for the short-term
// deviation to be meaningful: a part-filled window's differences are all
// same-signed, which would reject clean samples.
func (p *Pipeline) validate(s Sample) bool {
	if !p.buffer.Ready() {
		return true
	}
	ok := true
	for ch := 0; ch < p.config.Channels; ch++ {
		last, _ := p.buffer.Last(ch)
		d := s.Values[ch] - last
		sigma := DiffSigma(p.buffer.Channel(ch))
		if !p.validator.Validate(ch, d, sigma) {
			ok = false
		}
	}
	return ok
}

// extract produces the pulse signal for estimation, tracing the green
// path's intermediate filter stages when a tracer is attached.
func (p *Pipeline) extract(fps float64, now int64) []float64 {
	switch p.config.Mode {
	case ModeChrominance:
		n := p.buffer.Len()
		low, high := p.estimator.Band(n, fps)
		return CombineChrominance(
			p.buffer.Channel(0),
			p.buffer.Channel(1),
			p.buffer.Channel(2),
			float64(low), float64(high),
		)
	default:
		ch := 0
		if p.config.Channels == 3 {
			ch = 1 // green
		}
		raw := p.buffer.Channel(ch)
		denoised := Denoise(raw, p.buffer.Resyncs())

		lambda := p.config.DetrendLambda
		if lambda == 0 {
			lambda = fps
		}
		detrended := Detrend(denoised, lambda)

		kernel := int(math.Round(fps / 3))
		smoothed := MovingAverage(detrended, kernel, p.config.SmoothPasses)

		if p.tracer != nil {
			p.tracer.TraceSignal(now, raw, denoised, detrended, smoothed)
		}
		return smoothed
	}
}

// Rate exposes the buffer's current effective sampling rate.
func (p *Pipeline) Rate() float64 {
	return p.buffer.Rate()
}

// Ready reports whether the window spans enough time to estimate.
func (p *Pipeline) Ready() bool {
	return p.buffer.Ready()
}
