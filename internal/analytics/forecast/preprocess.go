package forecast

import (
	"github.com/finsightapp/finsight/internal/analytics/anomaly"
)

// Preprocessed is a cleaned copy of a series.
type Preprocessed struct {
	Values      []float64
	Outliers    []int
	Bounds      anomaly.Bounds
	Replacement float64
}

// OutlierRatio is the share of observations that were replaced.
func (p Preprocessed) OutlierRatio() float64 {
	if len(p.Values) == 0 {
		return 0
	}
	return float64(len(p.Outliers)) / float64(len(p.Values))
}

// Preprocess replaces values outside the 1.5×IQR fences with the median of the
// original series. The input slice is not modified.
func Preprocess(values []float64) Preprocessed {
	bounds := anomaly.ComputeBounds(values, outlierMultiplier)
	median := anomaly.Median(values)
	cleaned, outliers := ReplaceOutliers(values, bounds, median)
	return Preprocessed{
		Values:      cleaned,
		Outliers:    outliers,
		Bounds:      bounds,
		Replacement: median,
	}
}

// ReplaceOutliers returns a copy of values with everything outside bounds set
// to replacement, plus the replaced indices.
func ReplaceOutliers(values []float64, bounds anomaly.Bounds, replacement float64) ([]float64, []int) {
	cleaned := make([]float64, len(values))
	var outliers []int
	for i, v := range values {
		if bounds.Contains(v) {
			cleaned[i] = v
			continue
		}
		cleaned[i] = replacement
		outliers = append(outliers, i)
	}
	return cleaned, outliers
}
