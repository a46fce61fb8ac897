package forecast

import (
	"fmt"
	"math"

	"github.com/finsightapp/finsight/internal/analytics"
)

// LinearForecaster extrapolates a least-squares trend line.
type LinearForecaster struct{}

// NewLinearForecaster creates a new linear forecaster
func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

// Name returns the method name
func (f *LinearForecaster) Name() string {
	return MethodLinear.String()
}

// Forecast projects the fitted line past the end of values. Predictions are
// floored at zero. Per-step confidence blends the z-score of the prediction
// against the history with the fit's R², discounted by the outlier ratio.
func (f *LinearForecaster) Forecast(values []float64, h Horizon) (*MethodForecast, error) {
	fit, err := fitLine(values)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}

	mean := analytics.Mean(values)
	stdDev := analytics.StdDev(values)
	quality := math.Max(0, 1-2*h.OutlierRatio)
	n := len(values)

	points := make([]ForecastPoint, h.Periods)
	for i := 1; i <= h.Periods; i++ {
		value := math.Max(0, fit.at(float64(n+i-1)))
		base := math.Max(0.3, zScoreConfidence(zScore(value, mean, stdDev)))
		confidence := clamp((base+0.3*math.Max(fit.RSquared, 0))*quality, 0.3, 0.95)
		points[i-1] = ForecastPoint{
			Timestamp:  h.timestamp(i),
			Value:      value,
			Confidence: confidence,
		}
	}

	return &MethodForecast{
		Method: MethodLinear,
		Points: points,
		Parameters: map[string]float64{
			"slope":     fit.Slope,
			"intercept": fit.Intercept,
			"r_squared": fit.RSquared,
		},
	}, nil
}
