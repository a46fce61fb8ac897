package anomaly

import (
	"sort"
)

// IQRDetector flags values outside the Tukey fences
// [Q1 - k*IQR, Q3 + k*IQR], where k is the configured threshold.
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (d *IQRDetector) Name() string {
	return "iqr"
}

// Detect finds anomalies using IQR method
func (d *IQRDetector) Detect(values []float64, config DetectorConfig) []Result {
	if len(values) == 0 || len(values) < config.MinDataPoints {
		return nil
	}

	bounds := ComputeBounds(values, config.Threshold)
	expected := &Range{Min: bounds.Lower, Max: bounds.Upper}

	var results []Result
	for i, v := range values {
		if bounds.Contains(v) {
			continue
		}

		// Distance outside the fence in IQR units
		score := 1.0
		anomalyType := AnomalyTypeSpike
		if v < bounds.Lower {
			anomalyType = AnomalyTypeDrop
			if bounds.IQR > 0 {
				score = (bounds.Lower - v) / bounds.IQR
			}
		} else if bounds.IQR > 0 {
			score = (v - bounds.Upper) / bounds.IQR
		}

		results = append(results, Result{
			Index:    i,
			Value:    v,
			Score:    score,
			Type:     anomalyType,
			Expected: expected,
		})
	}

	return results
}

// Bounds holds the quartiles and fences of a sample
type Bounds struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies within the fences (inclusive)
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// ComputeBounds returns the quartiles of values and the fences at the given
// multiplier. A non-positive multiplier falls back to 1.5.
func ComputeBounds(values []float64, multiplier float64) Bounds {
	if multiplier <= 0 {
		multiplier = 1.5
	}
	q1, q3, iqr := CalculateIQR(values)
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - multiplier*iqr,
		Upper: q3 + multiplier*iqr,
	}
}

// percentile calculates the p-th percentile of sorted data
// p should be between 0 and 100
func percentile(sortedData []float64, p float64) float64 {
	if len(sortedData) == 0 {
		return 0
	}
	if len(sortedData) == 1 {
		return sortedData[0]
	}

	index := (p / 100) * float64(len(sortedData)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sortedData) {
		return sortedData[len(sortedData)-1]
	}

	// Linear interpolation
	weight := index - float64(lower)
	return sortedData[lower]*(1-weight) + sortedData[upper]*weight
}

// CalculateIQR returns Q1, Q3, and IQR for a slice of values
func CalculateIQR(values []float64) (q1, q3, iqr float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	sortedValues := sortedCopy(values)
	q1 = percentile(sortedValues, 25)
	q3 = percentile(sortedValues, 75)
	iqr = q3 - q1

	return q1, q3, iqr
}

// Median returns the 50th percentile of values without modifying them
func Median(values []float64) float64 {
	return percentile(sortedCopy(values), 50)
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
