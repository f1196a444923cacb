// internal/rppg/chrominance.go
package rppg

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CombineChrominance folds three raw color-channel signals into one
// motion-robust pulse signal. Each channel is normalized, combined into the
// two fixed chrominance signals
//
//	X = 3·Rn − 2·Gn
//	Y = 1.5·Rn + Gn − 1.5·Bn
//
// each bandpass-filtered over the bin band [cutin, cutoff], and blended as
// S = Xf − α·Yf with α the ratio of the filtered signals' standard
// deviations. Motion artifacts common to both combinations cancel while the
// pulse component, which differs between them, survives.
func CombineChrominance(r, g, b []float64, cutin, cutoff float64) []float64 {
	rn := Normalize(r)
	gn := Normalize(g)
	bn := Normalize(b)

	x := make([]float64, len(rn))
	floats.AddScaled(x, 3, rn)
	floats.AddScaled(x, -2, gn)

	y := make([]float64, len(rn))
	floats.AddScaled(y, 1.5, rn)
	floats.AddScaled(y, 1, gn)
	floats.AddScaled(y, -1.5, bn)

	xf := Bandpass(x, cutin, cutoff)
	yf := Bandpass(y, cutin, cutoff)

	if len(yf) < 2 {
		return xf
	}
	sy := stat.StdDev(yf, nil)
	if sy == 0 {
		return xf
	}
	alpha := stat.StdDev(xf, nil) / sy

	s := append([]float64(nil), xf...)
	floats.AddScaled(s, -alpha, yf)
	return s
}
