package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waferplot/domain/measurement"
)

func TestSummarize(t *testing.T) {
	s, ok := Summarize(Category{Label: "1", Values: []float64{1, 2, 3, 4, 5, 6, 7, 8, 100}})
	require.True(t, ok)
	assert.Equal(t, 9, s.N)
	assert.Equal(t, 5.0, s.Median)
	assert.Equal(t, []float64{100}, s.Outliers)
	assert.Equal(t, 1.0, s.LowerWhisker)
	assert.Equal(t, 8.0, s.UpperWhisker)

	single, ok := Summarize(Category{Label: "x", Values: []float64{3}})
	require.True(t, ok)
	assert.Equal(t, 3.0, single.Q1)
	assert.Equal(t, 3.0, single.Q3)

	_, ok = Summarize(Category{Label: "empty"})
	assert.False(t, ok)
}

func TestCornerExtentSpansEveryPanel(t *testing.T) {
	panels := []VoltagePanel{
		{Voltage: measurement.NumericLabel(0.75), Corners: []Category{{Label: "TT", Values: []float64{1, 2, 3}}}},
		{Voltage: measurement.NumericLabel(0.9), Corners: []Category{
			{Label: "FF", Values: []float64{-4, 5}},
			{Label: "SS"},
		}},
	}

	lo, hi, ok := CornerExtent(panels)
	require.True(t, ok)
	assert.Equal(t, -4.0, lo)
	assert.Equal(t, 5.0, hi)

	_, _, ok = CornerExtent(nil)
	assert.False(t, ok)
}
