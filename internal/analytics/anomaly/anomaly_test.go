package anomaly

import (
	"math"
	"testing"
)

func TestIQRDetector_DetectOutliers(t *testing.T) {
	detector := &IQRDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 5

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}

	results := detector.Detect(values, config)

	if len(results) != 1 {
		t.Fatalf("Expected exactly one outlier, got %d", len(results))
	}
	if results[0].Index != 9 {
		t.Errorf("Expected outlier at index 9, got %d", results[0].Index)
	}
	if results[0].Type != AnomalyTypeSpike {
		t.Errorf("Expected anomaly type spike, got %s", results[0].Type)
	}
	if results[0].Value != 100 {
		t.Errorf("Expected value 100, got %v", results[0].Value)
	}
	if results[0].Expected == nil || results[0].Expected.Max >= 100 {
		t.Errorf("Expected upper fence below 100, got %+v", results[0].Expected)
	}
}

func TestIQRDetector_DetectDrop(t *testing.T) {
	detector := &IQRDetector{}
	values := []float64{50, 52, 49, 51, 50, 1, 50, 48}

	results := detector.Detect(values, DefaultConfig())

	if len(results) != 1 || results[0].Index != 5 {
		t.Fatalf("Expected drop at index 5, got %+v", results)
	}
	if results[0].Type != AnomalyTypeDrop {
		t.Errorf("Expected anomaly type drop, got %s", results[0].Type)
	}
	if results[0].Score <= 0 {
		t.Errorf("Expected positive score, got %v", results[0].Score)
	}
}

func TestIQRDetector_NoAnomalies(t *testing.T) {
	detector := &IQRDetector{}
	config := DefaultConfig()

	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	results := detector.Detect(values, config)

	if len(results) != 0 {
		t.Errorf("Expected no anomalies, got %d", len(results))
	}
}

func TestIQRDetector_ZeroIQR(t *testing.T) {
	detector := &IQRDetector{}
	values := []float64{10, 10, 10, 10, 100, 10, 10, 10}

	results := detector.Detect(values, DefaultConfig())

	if len(results) != 1 || results[0].Index != 4 {
		t.Fatalf("Expected spike at index 4, got %+v", results)
	}
	if results[0].Score != 1.0 {
		t.Errorf("Expected unit score when IQR is zero, got %v", results[0].Score)
	}
}

func TestIQRDetector_ConstantSeries(t *testing.T) {
	detector := &IQRDetector{}
	values := []float64{7, 7, 7, 7, 7}

	if results := detector.Detect(values, DefaultConfig()); len(results) != 0 {
		t.Errorf("Expected no anomalies for a constant series, got %d", len(results))
	}
}

func TestIQRDetector_InsufficientData(t *testing.T) {
	detector := &IQRDetector{}
	config := DefaultConfig()
	config.MinDataPoints = 10

	if results := detector.Detect([]float64{1, 2, 300}, config); results != nil {
		t.Errorf("Expected nil results below MinDataPoints, got %v", results)
	}
}

func TestCalculateIQR(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}

	q1, q3, iqr := CalculateIQR(values)

	if q1 != 3 {
		t.Errorf("Expected Q1 3, got %f", q1)
	}
	if q3 != 7 {
		t.Errorf("Expected Q3 7, got %f", q3)
	}
	if math.Abs(iqr-4) > 1e-9 {
		t.Errorf("Expected IQR 4, got %f", iqr)
	}
}

func TestCalculateIQR_DoesNotMutateInput(t *testing.T) {
	values := []float64{9, 1, 5, 3}
	_, _, _ = CalculateIQR(values)

	want := []float64{9, 1, 5, 3}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("Input mutated: %v", values)
		}
	}
}

func TestComputeBounds(t *testing.T) {
	b := ComputeBounds([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 0)

	if b.Lower != 3-1.5*4 || b.Upper != 7+1.5*4 {
		t.Errorf("Unexpected fences: %+v", b)
	}
	if !b.Contains(b.Lower) || !b.Contains(b.Upper) {
		t.Error("Fences should be inclusive")
	}
	if b.Contains(b.Upper + 0.001) {
		t.Error("Value above the upper fence should not be contained")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{10, 10, 10, 10, 100, 10, 10, 10}, 10},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
		{[]float64{42}, 42},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := Median(tt.values); got != tt.want {
			t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestDetectorRegistry(t *testing.T) {
	detector, err := GetDetector("iqr")
	if err != nil {
		t.Fatalf("Expected iqr detector to be registered: %v", err)
	}
	if detector.Name() != "iqr" {
		t.Errorf("Expected name 'iqr', got '%s'", detector.Name())
	}

	found := false
	for _, name := range ListDetectors() {
		if name == "iqr" {
			found = true
		}
	}
	if !found {
		t.Error("Expected ListDetectors to include iqr")
	}
}

func TestGetDetector_Unknown(t *testing.T) {
	if _, err := GetDetector("unknown_detector"); err == nil {
		t.Error("Expected error for unknown detector")
	}
}

func TestDetectAnomalies(t *testing.T) {
	results, err := DetectAnomalies("iqr", []float64{5, 5, 6, 5, 90, 5}, DefaultConfig())
	if err != nil {
		t.Fatalf("DetectAnomalies failed: %v", err)
	}
	if len(results) != 1 || results[0].Index != 4 {
		t.Errorf("Expected one anomaly at index 4, got %+v", results)
	}

	if _, err := DetectAnomalies("nope", []float64{1, 2, 3}, DefaultConfig()); err == nil {
		t.Error("Expected error for unknown algorithm")
	}
}

func TestEmptyData(t *testing.T) {
	detector := &IQRDetector{}
	if results := detector.Detect(nil, DefaultConfig()); len(results) != 0 {
		t.Errorf("Expected no results for empty data, got %d", len(results))
	}
}
