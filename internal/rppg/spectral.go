// internal/rppg/spectral.go
package rppg

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidBand indicates the BPM band must satisfy 0 < low < high
var ErrInvalidBand = errors.New("bpm band must satisfy 0 < low < high")

const secPerMin = 60

// butterworthOrder is the order of the frequency-domain bandpass masks.
const butterworthOrder = 8

// SpectralEstimator maps a transformed signal window to an instantaneous
// BPM estimate via a band-limited power-spectrum peak search.
type SpectralEstimator struct {
	lowBPM  float64
	highBPM float64
}

// NewSpectralEstimator creates an estimator restricted to the given BPM band.
func NewSpectralEstimator(lowBPM, highBPM float64) (*SpectralEstimator, error) {
	if lowBPM <= 0 || highBPM <= lowBPM {
		return nil, ErrInvalidBand
	}
	return &SpectralEstimator{lowBPM: lowBPM, highBPM: highBPM}, nil
}

// Magnitudes computes the magnitude spectrum of the signal: forward DFT
// with a zero imaginary part, then per-bin magnitude. The spectrum has the
// same length as the input window.
func Magnitudes(signal []float64) []float64 {
	coeffs := forward(signal)
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// Band returns the spectrum bin range [low, high) corresponding to the
// estimator's BPM band for a window of n bins at the given sampling rate,
// clamped to [0, n).
func (e *SpectralEstimator) Band(n int, fps float64) (low, high int) {
	if n == 0 || fps <= 0 {
		return 0, 0
	}
	low = int(float64(n) * e.lowBPM / secPerMin / fps)
	high = int(float64(n) * e.highBPM / secPerMin / fps)
	if low < 0 {
		low = 0
	}
	if low > n {
		low = n
	}
	if high > n {
		high = n
	}
	return low, high
}

// PeakBPM finds the bin of maximum magnitude inside the BPM band and maps
// it back to beats per minute. Returns false when the spectrum is empty or
// the band degenerates to nothing, in which case no estimate is produced
// for the frame.
func (e *SpectralEstimator) PeakBPM(mags []float64, fps float64) (float64, bool) {
	n := len(mags)
	if n == 0 || fps <= 0 || fps == MaxRate {
		return 0, false
	}
	low, high := e.Band(n, fps)
	if low >= high {
		return 0, false
	}

	peak := low
	for i := low + 1; i < high; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	return float64(peak) * fps / float64(n) * secPerMin, true
}

// Bandpass filters the signal to the bin band [cutin, cutoff] in the
// frequency domain using an 8th-order Butterworth-shaped mask, then
// transforms back to the time domain. Signals shorter than three samples
// are returned unchanged.
func Bandpass(signal []float64, cutin, cutoff float64) []float64 {
	if len(signal) < 3 {
		return append([]float64(nil), signal...)
	}

	coeffs := forward(signal)
	mask := butterworthBandpass(len(coeffs), cutin, cutoff, butterworthOrder)
	for i := range coeffs {
		coeffs[i] *= complex(mask[i], 0)
	}
	return inverse(coeffs)
}

// forward computes the complex DFT of a real signal.
func forward(signal []float64) []complex128 {
	if len(signal) == 0 {
		return nil
	}
	seq := make([]complex128, len(signal))
	for i, v := range signal {
		seq[i] = complex(v, 0)
	}
	fft := fourier.NewCmplxFFT(len(seq))
	return fft.Coefficients(nil, seq)
}

// inverse transforms frequency-domain coefficients back to the time domain,
// keeping the real part rescaled to [0, 1].
func inverse(coeffs []complex128) []float64 {
	if len(coeffs) == 0 {
		return nil
	}
	fft := fourier.NewCmplxFFT(len(coeffs))
	seq := fft.Sequence(nil, coeffs)

	out := make([]float64, len(seq))
	for i, c := range seq {
		out[i] = real(c)
	}

	lo := floats.Min(out)
	hi := floats.Max(out)
	if hi == lo {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	for i, v := range out {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// butterworthLowpass builds a frequency-domain lowpass mask over n bins:
// mask[i] = 1 / (1 + (i/cutoff)^(2·order)).
func butterworthLowpass(n int, cutoff float64, order int) []float64 {
	mask := make([]float64, n)
	if cutoff <= 0 {
		// A zero cutoff passes nothing
		return mask
	}
	for i := range mask {
		ratio := float64(i) / cutoff
		mask[i] = 1 / (1 + pow2n(ratio, order))
	}
	return mask
}

// butterworthBandpass is the difference of two lowpass masks: the cutoff
// lowpass minus the cutin lowpass.
func butterworthBandpass(n int, cutin, cutoff float64, order int) []float64 {
	off := butterworthLowpass(n, cutoff, order)
	in := butterworthLowpass(n, cutin, order)
	floats.Sub(off, in)
	return off
}

// pow2n computes x^(2n) by repeated multiplication of x².
func pow2n(x float64, n int) float64 {
	sq := x * x
	out := 1.0
	for i := 0; i < n; i++ {
		out *= sq
	}
	return out
}
