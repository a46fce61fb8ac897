package forecast

import (
	"testing"
)

func TestExponentialSmoothingForecaster_Name(t *testing.T) {
	f := NewExponentialSmoothingForecaster()
	if f.Name() != "exponential" {
		t.Errorf("Expected name 'exponential', got '%s'", f.Name())
	}
}

func alphaInGrid(alpha float64) bool {
	for _, a := range AlphaGrid {
		if a == alpha {
			return true
		}
	}
	return false
}

func TestExponentialSmoothingForecaster_AlphaFromGrid(t *testing.T) {
	f := NewExponentialSmoothingForecaster()
	series := [][]float64{
		{1, 2, 4, 8, 16, 32},
		{100, 5, 100, 5, 100, 5},
		{10, 12, 11, 13, 12, 14, 13},
		{3, 3, 3},
	}
	for _, values := range series {
		result, err := f.Forecast(values, Horizon{Periods: 3, Anchor: testAnchor})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !alphaInGrid(result.Parameters["alpha"]) {
			t.Errorf("%v: alpha %v not in grid", values, result.Parameters["alpha"])
		}
		for i, p := range result.Points {
			if p.Confidence < 0.3 || p.Confidence > 0.95 {
				t.Errorf("%v point %d: confidence %v outside [0.3, 0.95]", values, i, p.Confidence)
			}
			if p.Value < 0 {
				t.Errorf("%v point %d: negative value %v", values, i, p.Value)
			}
		}
	}
}

func TestExponentialSmoothingForecaster_ConstantSeries(t *testing.T) {
	f := NewExponentialSmoothingForecaster()
	result, err := f.Forecast([]float64{5, 5, 5, 5}, Horizon{Periods: 2, Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// every alpha ties at zero error
	if result.Parameters["alpha"] != 0.1 {
		t.Errorf("alpha = %v, want 0.1", result.Parameters["alpha"])
	}
	for i, p := range result.Points {
		if p.Value != 5 {
			t.Errorf("Point %d = %v, want 5", i, p.Value)
		}
		if p.Confidence != 0.95 {
			t.Errorf("Point %d confidence = %v, want 0.95", i, p.Confidence)
		}
	}
}

func TestExponentialSmoothingForecaster_FollowsTrend(t *testing.T) {
	f := NewExponentialSmoothingForecaster()
	values := linearValues(10, 10, 10)
	result, err := f.Forecast(values, Horizon{Periods: 3, Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Parameters["alpha"] != 0.9 {
		t.Errorf("alpha = %v, want 0.9 for a steady ramp", result.Parameters["alpha"])
	}
	if result.Parameters["trend"] <= 0 {
		t.Errorf("trend = %v, want positive", result.Parameters["trend"])
	}
	if result.Points[2].Value <= result.Points[0].Value {
		t.Errorf("Expected increasing forecast, got %v", result.Values())
	}
}

func TestSmooth(t *testing.T) {
	smoothed := smooth([]float64{10, 20, 30}, 0.5)
	want := []float64{10, 15, 22.5}
	for i := range want {
		if !approxEqual(smoothed[i], want[i], 1e-12) {
			t.Errorf("smoothed[%d] = %v, want %v", i, smoothed[i], want[i])
		}
	}
}

func TestOneStepMSE(t *testing.T) {
	values := []float64{10, 20, 30}
	smoothed := []float64{10, 15, 22.5}
	// (20-10)^2 + (30-15)^2 over 2
	if got := oneStepMSE(values, smoothed); !approxEqual(got, 162.5, 1e-12) {
		t.Errorf("oneStepMSE = %v, want 162.5", got)
	}
	if got := oneStepMSE([]float64{1}, []float64{1}); got != 0 {
		t.Errorf("oneStepMSE of one value = %v, want 0", got)
	}
}
