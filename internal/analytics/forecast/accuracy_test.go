package forecast

import (
	"testing"
)

func TestAccuracyHoldout(t *testing.T) {
	tests := map[int]int{3: 1, 4: 1, 5: 1, 10: 2, 24: 4, 30: 6, 100: 6}
	for n, want := range tests {
		if got := accuracyHoldout(n); got != want {
			t.Errorf("accuracyHoldout(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestEvaluateAccuracy_PerfectLine(t *testing.T) {
	values := linearValues(12, 10, 10)
	acc, err := EvaluateAccuracy(values, MethodLinear, Horizon{Anchor: testAnchor})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !approxEqual(acc.MAPE, 0, 1e-9) {
		t.Errorf("MAPE = %v, want 0", acc.MAPE)
	}
	if !approxEqual(acc.RMSE, 0, 1e-9) {
		t.Errorf("RMSE = %v, want 0", acc.RMSE)
	}
	if !approxEqual(acc.RSquared, 1, 1e-9) {
		t.Errorf("RSquared = %v, want 1", acc.RSquared)
	}
	if !approxEqual(acc.Confidence, 1, 1e-9) {
		t.Errorf("Confidence = %v, want 1", acc.Confidence)
	}
}

func TestEvaluateAccuracy_ConfidenceFloor(t *testing.T) {
	values := []float64{100, 5, 100, 5, 100, 5, 100, 500, 1}
	for _, m := range Methods {
		acc, err := EvaluateAccuracy(values, m, Horizon{Anchor: testAnchor})
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", m, err)
		}
		if acc.Confidence < 0.5 || acc.Confidence > 1 {
			t.Errorf("%v: confidence %v outside [0.5, 1]", m, acc.Confidence)
		}
		if acc.MAPE < 0 || acc.RMSE < 0 {
			t.Errorf("%v: negative error metrics %+v", m, acc)
		}
	}
}

func TestEvaluateAccuracy_ShortSeries(t *testing.T) {
	if _, err := EvaluateAccuracy([]float64{1, 2, 3}, MethodAdaptive, Horizon{Anchor: testAnchor}); err != nil {
		t.Errorf("Unexpected error for three points: %v", err)
	}
	if _, err := EvaluateAccuracy([]float64{1, 2}, MethodLinear, Horizon{Anchor: testAnchor}); err == nil {
		t.Error("Expected error for two points")
	}
}

func TestCalculateMAPE_SkipsZeroActuals(t *testing.T) {
	got := CalculateMAPE([]float64{0, 100, 200}, []float64{5, 110, 180})
	if !approxEqual(got, 10, 1e-9) {
		t.Errorf("MAPE = %v, want 10", got)
	}
	if got := CalculateMAPE([]float64{0, 0}, []float64{1, 2}); got != 0 {
		t.Errorf("MAPE of zero actuals = %v, want 0", got)
	}
}

func TestCalculateRMSE(t *testing.T) {
	got := CalculateRMSE([]float64{1, 2, 3}, []float64{2, 3, 4})
	if !approxEqual(got, 1, 1e-12) {
		t.Errorf("RMSE = %v, want 1", got)
	}
	if got := CalculateRMSE([]float64{1}, []float64{1, 2}); got != 0 {
		t.Errorf("RMSE with mismatched lengths = %v, want 0", got)
	}
}
