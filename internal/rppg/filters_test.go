// internal/rppg/filters_test.go
package rppg

import (
	"math"
	"testing"
)

func TestDenoise_StepAbsorbed(t *testing.T) {
	// Flat signal with a +3 step at index 5 flagged as a resync
	a := make([]float64, 10)
	resyncs := make([]bool, 10)
	for i := range a {
		a[i] = 5
		if i >= 5 {
			a[i] += 3
		}
	}
	resyncs[5] = true

	out := Denoise(a, resyncs)

	for i := 0; i < 5; i++ {
		if out[i] != 5 {
			t.Errorf("out[%d] = %v, value before the step modified", i, out[i])
		}
	}
	// The step is fully absorbed: the difference across the resync matches
	// the flat pre-step slope
	if got := out[5] - out[4]; math.Abs(got) > 1e-12 {
		t.Errorf("difference across resync = %v, want 0", got)
	}
	for i := 5; i < 10; i++ {
		if math.Abs(out[i]-5) > 1e-12 {
			t.Errorf("out[%d] = %v, want 5", i, out[i])
		}
	}
}

func TestDenoise_ConsecutiveStepsCompound(t *testing.T) {
	a := []float64{1, 1, 4, 4, 2, 2}
	resyncs := []bool{false, false, true, false, true, false}

	out := Denoise(a, resyncs)

	want := []float64{1, 1, 1, 1, 1, 1}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDenoise_ShortAndUnflagged(t *testing.T) {
	short := Denoise([]float64{7}, []bool{true})
	if len(short) != 1 || short[0] != 7 {
		t.Errorf("short signal modified: %v", short)
	}

	a := []float64{1, 2, 3}
	out := Denoise(a, []bool{false, false, false})
	for i := range a {
		if out[i] != a[i] {
			t.Errorf("unflagged signal modified at %d", i)
		}
	}

	// A resync at index 0 has no preceding difference and is ignored
	out = Denoise(a, []bool{true, false, false})
	for i := range a {
		if out[i] != a[i] {
			t.Errorf("index-0 resync modified signal at %d", i)
		}
	}
}

func TestDenoiseMulti_PerChannelOffsets(t *testing.T) {
	channels := [][]float64{
		{0, 0, 2, 2},
		{0, 0, 5, 5},
	}
	resyncs := []bool{false, false, true, false}

	out := DenoiseMulti(channels, resyncs)

	for ch := range out {
		for i, v := range out[ch] {
			if math.Abs(v) > 1e-12 {
				t.Errorf("channel %d out[%d] = %v, want 0", ch, i, v)
			}
		}
	}
}

func TestDetrend_ConstantToZero(t *testing.T) {
	a := make([]float64, 50)
	for i := range a {
		a[i] = 42
	}

	out := Detrend(a, 10)
	for i, v := range out {
		if math.Abs(v) > 1e-8 {
			t.Errorf("out[%d] = %v, want ~0", i, v)
		}
	}
}

func TestDetrend_RampNearZeroMean(t *testing.T) {
	a := make([]float64, 50)
	for i := range a {
		a[i] = float64(i)
	}

	out := Detrend(a, 10)

	mean := 0.0
	for _, v := range out {
		mean += v
	}
	mean /= float64(len(out))
	if math.Abs(mean) > 1e-6 {
		t.Errorf("detrended ramp mean = %v, want ~0", mean)
	}
}

func TestDetrend_ShortSignalIdentity(t *testing.T) {
	a := []float64{3, 1}
	out := Detrend(a, 10)
	if len(out) != 2 || out[0] != 3 || out[1] != 1 {
		t.Errorf("short signal not returned unchanged: %v", out)
	}
}

func TestDetrend_PreservesOscillation(t *testing.T) {
	// Drift plus a 1.2 Hz oscillation at 30 Hz sampling; detrending must
	// keep most of the oscillation's energy
	n := 150
	a := make([]float64, n)
	for i := range a {
		ts := float64(i) / 30
		a[i] = 0.5*ts + math.Sin(2*math.Pi*1.2*ts)
	}

	out := Detrend(a, 30)

	var energy float64
	for _, v := range out {
		energy += v * v
	}
	if energy < float64(n)*0.1 {
		t.Errorf("oscillation energy %v too low after detrend", energy)
	}
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		kernel int
		passes int
		want   []float64
	}{
		{"identity kernel", []float64{1, 2, 3}, 1, 3, []float64{1, 2, 3}},
		{"clamped kernel", []float64{1, 2, 3}, 0, 1, []float64{1, 2, 3}},
		{"spike spread", []float64{0, 3, 0}, 3, 1, []float64{1.5, 1, 1.5}},
		{"empty", nil, 3, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.input, tt.kernel, tt.passes)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("out[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMovingAverage_ConstantInvariant(t *testing.T) {
	a := []float64{5, 5, 5, 5, 5}
	out := MovingAverage(a, 3, 3)
	for i, v := range out {
		if math.Abs(v-5) > 1e-12 {
			t.Errorf("out[%d] = %v, want 5", i, v)
		}
	}
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float64{2, 4, 6})
	mean := (out[0] + out[1] + out[2]) / 3
	if math.Abs(mean) > 1e-12 {
		t.Errorf("normalized mean = %v, want 0", mean)
	}
	if out[0] >= 0 || out[1] != 0 || out[2] <= 0 || math.Abs(out[0]+out[2]) > 1e-12 {
		t.Errorf("normalized signal not symmetric about zero: %v", out)
	}

	// Constant input must not divide by zero
	flat := Normalize([]float64{3, 3, 3})
	for i, v := range flat {
		if v != 0 {
			t.Errorf("flat[%d] = %v, want 0", i, v)
		}
	}
}
