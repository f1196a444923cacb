// internal/rppg/buffer.go
package rppg

import (
	"errors"
	"math"
)

var (
	// ErrInvalidChannels indicates the channel count must be 1 or 3
	ErrInvalidChannels = errors.New("channel count must be 1 or 3")
	// ErrInvalidWindow indicates the window length must be positive
	ErrInvalidWindow = errors.New("window seconds must be positive")
	// ErrInvalidTimeBase indicates the timestamp scale must be positive
	ErrInvalidTimeBase = errors.New("time base must be positive")
)

// MaxRate is the sentinel sampling rate used when the buffered samples span
// zero elapsed time. Rate arithmetic treats it naturally: nothing is evicted
// and the window is never considered full.
const MaxRate = math.MaxFloat64

// Sample is one video frame's extracted brightness value(s) with its
// timestamp and the tracker's re-acquisition marker.
type Sample struct {
	// Values holds one entry per channel (1 for green, 3 for RGB)
	Values []float64
	// Timestamp in source time units, scaled to seconds by the time base
	Timestamp int64
	// Resync is true on frames where the tracker reacquired the face
	Resync bool
}

// Buffer is the rolling, time-bounded sample window. It owns the signal
// state exclusively; callers must serialize Append with any reads.
type Buffer struct {
	channels      int
	windowSeconds float64
	timeBase      float64

	values  [][]float64 // one slice per channel, insertion order
	times   []int64
	resyncs []bool
}

// NewBuffer creates a rolling buffer for the given channel count.
func NewBuffer(channels int, windowSeconds, timeBase float64) (*Buffer, error) {
	if channels != 1 && channels != 3 {
		return nil, ErrInvalidChannels
	}
	if windowSeconds <= 0 {
		return nil, ErrInvalidWindow
	}
	if timeBase <= 0 {
		return nil, ErrInvalidTimeBase
	}

	values := make([][]float64, channels)
	return &Buffer{
		channels:      channels,
		windowSeconds: windowSeconds,
		timeBase:      timeBase,
		values:        values,
	}, nil
}

// Rate returns the effective sampling rate of the buffered window in Hz.
// Returns 1.0 for an empty buffer and MaxRate when the window holds a
// single sample or spans zero elapsed time.
func (b *Buffer) Rate() float64 {
	n := len(b.times)
	switch {
	case n == 0:
		return 1.0
	case n == 1:
		return MaxRate
	}
	elapsed := float64(b.times[n-1]-b.times[0]) * b.timeBase
	if elapsed == 0 {
		return MaxRate
	}
	return float64(n-1) / elapsed
}

// Append adds one sample, then evicts the oldest entries while the window
// exceeds rate × windowSeconds. Eviction is strictly FIFO, so the buffer
// never holds more than ⌈rate × windowSeconds⌉ entries.
func (b *Buffer) Append(s Sample) {
	for ch := 0; ch < b.channels; ch++ {
		b.values[ch] = append(b.values[ch], s.Values[ch])
	}
	b.times = append(b.times, s.Timestamp)
	b.resyncs = append(b.resyncs, s.Resync)

	rate := b.Rate()
	if rate == MaxRate {
		return
	}
	limit := rate * b.windowSeconds
	for float64(len(b.times)) > limit && len(b.times) > 1 {
		b.evict()
	}
}

func (b *Buffer) evict() {
	for ch := 0; ch < b.channels; ch++ {
		b.values[ch] = b.values[ch][1:]
	}
	b.times = b.times[1:]
	b.resyncs = b.resyncs[1:]
}

// Ready reports whether the buffer spans at least windowSeconds at the
// current rate.
func (b *Buffer) Ready() bool {
	rate := b.Rate()
	if rate == MaxRate {
		return false
	}
	return float64(len(b.times))/rate >= b.windowSeconds
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	return len(b.times)
}

// Channels returns the configured channel count.
func (b *Buffer) Channels() int {
	return b.channels
}

// Channel returns the buffered signal for one channel. The returned slice
// aliases buffer storage and is only valid until the next Append.
func (b *Buffer) Channel(ch int) []float64 {
	return b.values[ch]
}

// Last returns the most recent value of one channel and false when empty.
func (b *Buffer) Last(ch int) (float64, bool) {
	v := b.values[ch]
	if len(v) == 0 {
		return 0, false
	}
	return v[len(v)-1], true
}

// Resyncs returns the re-acquisition flags aligned with the window.
func (b *Buffer) Resyncs() []bool {
	return b.resyncs
}
