package walkscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestDistanceToScore(t *testing.T) {
	daily := Thresholds{IdealM: 400, AcceptableM: 800, PoorM: 1500}

	tests := []struct {
		name     string
		distance *float64
		want     float64
	}{
		{"nil distance", nil, 0},
		{"zero distance", f(0), 100},
		{"at ideal", f(400), 100},
		{"midway ideal to acceptable", f(600), 85},
		{"at acceptable", f(800), 70},
		{"inside acceptable to poor", f(900), 70 - 40*100.0/700.0},
		{"at poor", f(1500), 30},
		{"100m past poor", f(1600), 29},
		{"decayed to zero", f(4500), 0},
		{"far past zero", f(10000), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceToScore(tt.distance, daily), 1e-9)
		})
	}
}

func TestDistanceToScoreContinuity(t *testing.T) {
	// The three segments must meet at the thresholds without jumps.
	th := Thresholds{IdealM: 600, AcceptableM: 1200, PoorM: 2000}

	for _, boundary := range []float64{th.IdealM, th.AcceptableM, th.PoorM} {
		below := DistanceToScore(f(boundary-0.001), th)
		above := DistanceToScore(f(boundary+0.001), th)
		assert.InDelta(t, below, above, 0.01, "discontinuity at %.0fm", boundary)
	}
}

func TestDistanceToScoreMonotonic(t *testing.T) {
	th := Thresholds{IdealM: 800, AcceptableM: 1500, PoorM: 3000}

	prev := 100.0
	for d := 0.0; d <= 7000; d += 50 {
		s := DistanceToScore(f(d), th)
		assert.LessOrEqual(t, s, prev, "score increased at %.0fm", d)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
		prev = s
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		index float64
		want  string
	}{
		{95, "Excellent"},
		{80, "Excellent"},
		{79.9, "Good"},
		{65, "Good"},
		{64.9, "Moderate"},
		{50, "Moderate"},
		{49.9, "Poor"},
		{35, "Poor"},
		{34.9, "Very Poor"},
		{0, "Very Poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.index), "index %.1f", tt.index)
	}
}
