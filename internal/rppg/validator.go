// internal/rppg/validator.go
package rppg

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// maxValidatorChannels bounds the per-channel state arrays.
const maxValidatorChannels = 3

// NoiseValidator classifies the newest sample of each channel as accepted
// or rejected, using the magnitude of its first difference relative to the
// short-term standard deviation of the window's first differences.
//
// The state machine debounces in both directions: a single large deviation
// is accepted tentatively and only rejected when a second consecutive large
// deviation confirms it as noise, and recovery from a noisy stretch needs
// two consecutive small deviations before samples are accepted again. The
// reject side deliberately compares against sigma where the accept side
// compares against 2*sigma.
type NoiseValidator struct {
	channels int
	pending  [maxValidatorChannels]bool
	accepted [maxValidatorChannels]bool
}

// NewNoiseValidator creates a validator for the given channel count.
func NewNoiseValidator(channels int) (*NoiseValidator, error) {
	if channels < 1 || channels > maxValidatorChannels {
		return nil, ErrInvalidChannels
	}
	v := &NoiseValidator{channels: channels}
	v.Reset()
	return v, nil
}

// Reset returns every channel to the clean, accepting state. Called only on
// full pipeline reinitialization.
func (v *NoiseValidator) Reset() {
	for ch := 0; ch < maxValidatorChannels; ch++ {
		v.pending[ch] = false
		v.accepted[ch] = true
	}
}

// Validate classifies one channel's newest sample given its first
// difference d and the short-term standard deviation sigma of the window's
// first differences (excluding d itself). Returns true when the sample is
// accepted.
func (v *NoiseValidator) Validate(ch int, d, sigma float64) bool {
	mag := math.Abs(d)
	var accept bool

	if v.accepted[ch] {
		switch {
		case mag <= 2*sigma:
			v.pending[ch] = false
			accept = true
		case !v.pending[ch]:
			// First large deviation: tentative accept, await confirmation
			v.pending[ch] = true
			accept = true
		default:
			// Second consecutive large deviation: confirmed noise
			v.pending[ch] = false
			accept = false
		}
	} else {
		switch {
		case mag > sigma:
			v.pending[ch] = false
			accept = false
		case !v.pending[ch]:
			// First small deviation after noise: might be recovering
			v.pending[ch] = true
			accept = false
		default:
			// Second consecutive small deviation: confirmed recovered
			v.pending[ch] = false
			accept = true
		}
	}

	v.accepted[ch] = accept
	return accept
}

// Accepted reports whether the channel's previous sample was accepted.
func (v *NoiseValidator) Accepted(ch int) bool {
	return v.accepted[ch]
}

// DiffSigma computes the standard deviation of the first differences of
// signal. Returns 0 when fewer than three samples are buffered.
func DiffSigma(signal []float64) float64 {
	if len(signal) < 3 {
		return 0
	}
	diffs := make([]float64, len(signal)-1)
	for i := range diffs {
		diffs[i] = signal[i+1] - signal[i]
	}
	return stat.StdDev(diffs, nil)
}
