// internal/rppg/aggregator.go
package rppg

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInvalidSamplingFrequency indicates the report interval must be positive
	ErrInvalidSamplingFrequency = errors.New("sampling frequency must be positive")
)

// Estimate is one frame's instantaneous BPM point estimate.
type Estimate struct {
	Timestamp int64
	BPM       float64
}

// Report is the windowed aggregate emitted at most once per sampling
// interval.
type Report struct {
	Timestamp int64
	Mean      float64
	Min       float64
	Max       float64
}

// Aggregator collects per-frame estimates and reports mean/min/max at
// sampling-interval boundaries.
type Aggregator struct {
	samplingFrequency float64 // seconds between reports
	timeBase          float64

	lastReport int64
	estimates  []Estimate
}

// NewAggregator creates an aggregator reporting once per samplingFrequency
// seconds of source time.
func NewAggregator(samplingFrequency, timeBase float64) (*Aggregator, error) {
	if samplingFrequency <= 0 {
		return nil, ErrInvalidSamplingFrequency
	}
	if timeBase <= 0 {
		return nil, ErrInvalidTimeBase
	}
	return &Aggregator{
		samplingFrequency: samplingFrequency,
		timeBase:          timeBase,
	}, nil
}

// Add folds one point estimate into the current reporting window.
func (a *Aggregator) Add(e Estimate) {
	a.estimates = append(a.estimates, e)
}

// Due reports whether a sampling interval has elapsed since the last report.
func (a *Aggregator) Due(now int64) bool {
	return float64(now-a.lastReport)*a.timeBase >= a.samplingFrequency
}

// Flush emits the aggregate of the accumulated estimates and clears the
// accumulator. Returns false when no estimates were collected; the interval
// still advances so an idle stretch does not produce a burst of reports.
func (a *Aggregator) Flush(now int64) (Report, bool) {
	a.lastReport = now
	if len(a.estimates) == 0 {
		return Report{}, false
	}

	bpms := make([]float64, len(a.estimates))
	for i, e := range a.estimates {
		bpms[i] = e.BPM
	}
	sort.Float64s(bpms)

	rep := Report{
		Timestamp: now,
		Mean:      stat.Mean(bpms, nil),
		Min:       bpms[0],
		Max:       bpms[len(bpms)-1],
	}
	a.estimates = a.estimates[:0]
	return rep, true
}

// Pending returns the number of estimates in the current window.
func (a *Aggregator) Pending() int {
	return len(a.estimates)
}
