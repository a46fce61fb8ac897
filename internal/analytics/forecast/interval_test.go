package forecast

import (
	"testing"
)

func TestZMultiplier(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.95, 1.96},
		{0.90, 1.645},
		{0.9, 1.645},
		{0.99, 1.28},
		{0.80, 1.28},
		{0.5, 1.28},
	}
	for _, tt := range tests {
		if got := zMultiplier(tt.confidence); got != tt.want {
			t.Errorf("zMultiplier(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestBuildConfidenceIntervals(t *testing.T) {
	points := []ForecastPoint{{Value: 100}, {Value: 5}}
	intervals := BuildConfidenceIntervals(points, 10, 0.95)

	if len(intervals) != 2 {
		t.Fatalf("Expected 2 intervals, got %d", len(intervals))
	}
	if !approxEqual(intervals[0].Lower, 80.4, 1e-9) || !approxEqual(intervals[0].Upper, 119.6, 1e-9) {
		t.Errorf("interval[0] = [%v, %v], want [80.4, 119.6]", intervals[0].Lower, intervals[0].Upper)
	}
	if intervals[1].Lower != 0 {
		t.Errorf("interval[1].Lower = %v, want 0", intervals[1].Lower)
	}
	for i, ci := range intervals {
		if ci.Probability != 0.95 {
			t.Errorf("interval[%d].Probability = %v, want 0.95", i, ci.Probability)
		}
		if ci.Lower > points[i].Value || ci.Upper < points[i].Value {
			t.Errorf("interval[%d] does not contain its prediction", i)
		}
	}
}

func TestBuildConfidenceIntervals_OtherLevel(t *testing.T) {
	intervals := BuildConfidenceIntervals([]ForecastPoint{{Value: 50}}, 10, 0.8)
	if !approxEqual(intervals[0].Upper, 62.8, 1e-9) {
		t.Errorf("Upper = %v, want 62.8", intervals[0].Upper)
	}
	if intervals[0].Probability != 0.8 {
		t.Errorf("Probability = %v, want 0.8", intervals[0].Probability)
	}
}
