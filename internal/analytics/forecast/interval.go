package forecast

import "math"

// ConfidenceLevels are the probabilities with a dedicated z multiplier.
var ConfidenceLevels = []float64{0.95, 0.90}

// zMultiplier maps a confidence level to its normal quantile: 1.96 for 0.95,
// 1.645 for 0.90 and 1.28 for anything else.
func zMultiplier(confidence float64) float64 {
	switch {
	case math.Abs(confidence-0.95) < 1e-9:
		return 1.96
	case math.Abs(confidence-0.90) < 1e-9:
		return 1.645
	default:
		return 1.28
	}
}

// BuildConfidenceIntervals returns [max(0, v-zσ), v+zσ] for each point.
func BuildConfidenceIntervals(points []ForecastPoint, stdDev, confidence float64) []ConfidenceInterval {
	margin := zMultiplier(confidence) * stdDev
	intervals := make([]ConfidenceInterval, len(points))
	for i, p := range points {
		intervals[i] = ConfidenceInterval{
			Lower:       math.Max(0, p.Value-margin),
			Upper:       p.Value + margin,
			Probability: confidence,
		}
	}
	return intervals
}
