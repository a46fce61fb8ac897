package forecast

import (
	"reflect"
	"testing"
)

func TestPreprocess_ReplacesSpikeWithMedian(t *testing.T) {
	values := []float64{10, 10, 10, 10, 100, 10, 10, 10}
	pre := Preprocess(values)

	for i, v := range pre.Values {
		if v != 10 {
			t.Errorf("Values[%d] = %v, want 10", i, v)
		}
	}
	if !reflect.DeepEqual(pre.Outliers, []int{4}) {
		t.Errorf("Outliers = %v, want [4]", pre.Outliers)
	}
	if !approxEqual(pre.OutlierRatio(), 0.125, 1e-12) {
		t.Errorf("OutlierRatio = %v, want 0.125", pre.OutlierRatio())
	}
}

func TestPreprocess_UsesMedianOfOriginal(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 100}
	pre := Preprocess(values)

	if len(pre.Outliers) != 1 || pre.Outliers[0] != 5 {
		t.Fatalf("Outliers = %v, want [5]", pre.Outliers)
	}
	if pre.Values[5] != 3.5 {
		t.Errorf("replacement = %v, want 3.5", pre.Values[5])
	}
}

func TestPreprocess_DoesNotModifyInput(t *testing.T) {
	values := []float64{10, 10, 10, 10, 100, 10, 10, 10}
	original := append([]float64(nil), values...)

	_ = Preprocess(values)

	if !reflect.DeepEqual(values, original) {
		t.Errorf("input modified: %v", values)
	}
}

func TestPreprocess_NoOutliers(t *testing.T) {
	values := []float64{5, 6, 7, 8, 9}
	pre := Preprocess(values)

	if len(pre.Outliers) != 0 {
		t.Errorf("Outliers = %v, want none", pre.Outliers)
	}
	if !reflect.DeepEqual(pre.Values, values) {
		t.Errorf("Values = %v, want %v", pre.Values, values)
	}
	if pre.OutlierRatio() != 0 {
		t.Errorf("OutlierRatio = %v, want 0", pre.OutlierRatio())
	}
}

func TestReplaceOutliers_Idempotent(t *testing.T) {
	values := []float64{3, 4, 5, 4, 3, 90, 4, 5, 0.01, 4}
	pre := Preprocess(values)

	again, outliers := ReplaceOutliers(pre.Values, pre.Bounds, pre.Replacement)
	if !reflect.DeepEqual(again, pre.Values) {
		t.Errorf("second pass changed values: %v vs %v", again, pre.Values)
	}
	if len(outliers) != 0 {
		t.Errorf("second pass found outliers %v", outliers)
	}
	if len(again) != len(values) {
		t.Errorf("length changed: %d vs %d", len(again), len(values))
	}
}
