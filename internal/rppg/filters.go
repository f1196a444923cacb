// internal/rppg/filters.go
package rppg

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Denoise removes the step discontinuities introduced by tracker
// re-acquisition. For every window position flagged as a resync (index > 0)
// the first difference at the preceding position is subtracted as a constant
// offset from all samples at and after the flag. Differences are taken from
// the input signal once, before any offsets are applied, so consecutive
// resyncs compound correctly.
func Denoise(a []float64, resyncs []bool) []float64 {
	out := append([]float64(nil), a...)
	if len(a) < 2 {
		return out
	}

	diff := make([]float64, len(a)-1)
	for i := range diff {
		diff[i] = a[i+1] - a[i]
	}

	for i, resync := range resyncs {
		if !resync || i == 0 || i >= len(a) {
			continue
		}
		step := diff[i-1]
		for j := i; j < len(out); j++ {
			out[j] -= step
		}
	}
	return out
}

// DenoiseMulti applies Denoise independently per channel with a shared
// resync track.
func DenoiseMulti(channels [][]float64, resyncs []bool) [][]float64 {
	out := make([][]float64, len(channels))
	for ch, a := range channels {
		out[ch] = Denoise(a, resyncs)
	}
	return out
}

// Detrend removes slow drift with the smoothness-priors approach:
//
//	b = a − (I + λ²·D₂ᵀD₂)⁻¹ a
//
// where D₂ is the second-difference operator. Larger lambda removes lower
// frequency trend. Signals shorter than three samples are returned
// unchanged, as is the input when the regularized system cannot be solved.
// The dense solve is cubic in the window length, which stays tractable for
// windows of a few hundred samples.
func Detrend(a []float64, lambda float64) []float64 {
	n := len(a)
	if n < 3 {
		return append([]float64(nil), a...)
	}

	d2 := mat.NewDense(n-2, n, nil)
	for i := 0; i < n-2; i++ {
		d2.Set(i, i, 1)
		d2.Set(i, i+1, -2)
		d2.Set(i, i+2, 1)
	}

	// m = I + λ²·D₂ᵀD₂
	var m mat.Dense
	m.Mul(d2.T(), d2)
	m.Scale(lambda*lambda, &m)
	for i := 0; i < n; i++ {
		m.Set(i, i, m.At(i, i)+1)
	}

	var trend mat.VecDense
	if err := trend.SolveVec(&m, mat.NewVecDense(n, append([]float64(nil), a...))); err != nil {
		return append([]float64(nil), a...)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = a[i] - trend.AtVec(i)
	}
	return out
}

// MovingAverage applies a moving-average blur of the given kernel size the
// given number of times. Window positions near the edges use the shrunk
// symmetric window that fits. Kernel sizes below one are clamped to one
// (identity).
func MovingAverage(a []float64, kernel, passes int) []float64 {
	out := append([]float64(nil), a...)
	if kernel < 1 {
		kernel = 1
	}
	if kernel == 1 || len(a) == 0 {
		return out
	}

	tmp := make([]float64, len(a))
	for p := 0; p < passes; p++ {
		for i := range out {
			lo := i - kernel/2
			hi := lo + kernel
			if lo < 0 {
				lo = 0
			}
			if hi > len(out) {
				hi = len(out)
			}
			sum := 0.0
			for _, v := range out[lo:hi] {
				sum += v
			}
			tmp[i] = sum / float64(hi-lo)
		}
		copy(out, tmp)
	}
	return out
}

// Normalize subtracts the mean and divides by the standard deviation.
// A constant signal normalizes to all zeros rather than dividing by zero.
func Normalize(a []float64) []float64 {
	out := make([]float64, len(a))
	if len(a) < 2 {
		return out
	}
	mean, sd := stat.MeanStdDev(a, nil)
	if sd == 0 {
		return out
	}
	for i, v := range a {
		out[i] = (v - mean) / sd
	}
	return out
}
