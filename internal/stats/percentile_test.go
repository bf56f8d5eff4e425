package stats

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "empty", values: nil, p: 50, want: 0},
		{name: "single value p0", values: []float64{42}, p: 0, want: 42},
		{name: "single value p95", values: []float64{42}, p: 95, want: 42},
		{name: "integral index", values: []float64{10, 20, 30, 40, 50}, p: 50, want: 30},
		{name: "interpolated", values: []float64{10, 20, 30, 40}, p: 50, want: 25},
		{name: "p75 interpolated", values: []float64{700, 1000}, p: 75, want: 925},
		{name: "p0 is min", values: []float64{1, 2, 3}, p: 0, want: 1},
		{name: "p100 is max", values: []float64{1, 2, 3}, p: 100, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.p)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPercentileWithinBounds(t *testing.T) {
	samples := [][]float64{
		{5},
		{1, 1, 1, 1},
		{3, 9, 27, 81, 243},
		{0.5, 0.75, 1.25, 600, 601, 10000},
	}

	for _, sample := range samples {
		sorted := append([]float64(nil), sample...)
		sort.Float64s(sorted)
		for p := 0.0; p <= 100; p += 2.5 {
			got := Percentile(sorted, p)
			if got < sorted[0] || got > sorted[len(sorted)-1] {
				t.Errorf("Percentile(%v, %v) = %v out of range", sorted, p, got)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{1000, 700}
	s := Summarize(values)

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 700.0, s.Min)
	assert.Equal(t, 1000.0, s.Max)
	assert.InDelta(t, 850.0, s.P50, 1e-9)
	assert.InDelta(t, 850.0, s.Avg, 1e-9)
	assert.InDelta(t, 985.0, s.P95, 1e-9)

	// input must not be reordered
	assert.Equal(t, []float64{1000, 700}, values)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.IsZero())
	assert.Equal(t, Summary{}, s)
	assert.False(t, math.IsNaN(s.Avg))
}
