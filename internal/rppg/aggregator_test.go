// internal/rppg/aggregator_test.go
package rppg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAggregator_InvalidConfig(t *testing.T) {
	_, err := NewAggregator(0, 0.001)
	assert.ErrorIs(t, err, ErrInvalidSamplingFrequency)

	_, err = NewAggregator(-1, 0.001)
	assert.ErrorIs(t, err, ErrInvalidSamplingFrequency)

	_, err = NewAggregator(1, 0)
	assert.ErrorIs(t, err, ErrInvalidTimeBase)
}

func TestAggregator_MeanMinMax(t *testing.T) {
	agg, err := NewAggregator(1, 0.001)
	require.NoError(t, err)

	for i, bpm := range []float64{62, 58, 60} {
		agg.Add(Estimate{Timestamp: int64(i * 100), BPM: bpm})
	}

	rep, ok := agg.Flush(1000)
	require.True(t, ok)
	assert.Equal(t, int64(1000), rep.Timestamp)
	assert.InDelta(t, 60, rep.Mean, 1e-12)
	assert.Equal(t, 58.0, rep.Min)
	assert.Equal(t, 62.0, rep.Max)

	// Accumulator is empty immediately after the report
	assert.Zero(t, agg.Pending())
}

func TestAggregator_Due(t *testing.T) {
	agg, err := NewAggregator(1, 0.001)
	require.NoError(t, err)

	assert.False(t, agg.Due(999), "interval not yet elapsed")
	assert.True(t, agg.Due(1000))

	agg.Add(Estimate{Timestamp: 1000, BPM: 70})
	_, ok := agg.Flush(1000)
	require.True(t, ok)

	assert.False(t, agg.Due(1500), "interval restarts after a report")
	assert.True(t, agg.Due(2000))
}

func TestAggregator_EmptyWindowSkipsReport(t *testing.T) {
	agg, err := NewAggregator(1, 0.001)
	require.NoError(t, err)

	_, ok := agg.Flush(5000)
	assert.False(t, ok, "no report without estimates")

	// The interval still advances so an idle stretch does not burst
	assert.False(t, agg.Due(5500))
	assert.True(t, agg.Due(6000))
}

func TestAggregator_BoundsOrdering(t *testing.T) {
	agg, err := NewAggregator(1, 0.001)
	require.NoError(t, err)

	for _, bpm := range []float64{91.2, 64.7, 78.8, 70.1} {
		agg.Add(Estimate{BPM: bpm})
	}

	rep, ok := agg.Flush(1000)
	require.True(t, ok)
	assert.LessOrEqual(t, rep.Min, rep.Mean)
	assert.LessOrEqual(t, rep.Mean, rep.Max)
}
