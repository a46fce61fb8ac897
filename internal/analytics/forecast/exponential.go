package forecast

import (
	"fmt"
	"math"
)

// ExponentialSmoothingForecaster implements simple exponential smoothing with
// alpha chosen from AlphaGrid by one-step-ahead squared error.
type ExponentialSmoothingForecaster struct{}

// NewExponentialSmoothingForecaster creates a new Exponential Smoothing forecaster
func NewExponentialSmoothingForecaster() *ExponentialSmoothingForecaster {
	return &ExponentialSmoothingForecaster{}
}

// Name returns the method name
func (f *ExponentialSmoothingForecaster) Name() string {
	return MethodExponential.String()
}

// Forecast continues the last smoothed level along the slope of the last
// three smoothed values.
func (f *ExponentialSmoothingForecaster) Forecast(values []float64, h Horizon) (*MethodForecast, error) {
	n := len(values)
	if n == 0 {
		return nil, fmt.Errorf("exponential: empty series")
	}

	alpha, mse := optimizeAlpha(values)
	smoothed := smooth(values, alpha)
	level := smoothed[n-1]

	trend := 0.0
	if n >= 3 {
		fit, err := fitLine(smoothed[n-3:])
		if err != nil {
			return nil, fmt.Errorf("exponential: %w", err)
		}
		trend = fit.Slope
	}

	confidence := clamp(1-CalculateMAPE(values, smoothed)/100, 0.3, 0.95)

	points := make([]ForecastPoint, h.Periods)
	for i := 1; i <= h.Periods; i++ {
		points[i-1] = ForecastPoint{
			Timestamp:  h.timestamp(i),
			Value:      math.Max(0, level+trend*float64(i)),
			Confidence: confidence,
		}
	}

	return &MethodForecast{
		Method: MethodExponential,
		Points: points,
		Parameters: map[string]float64{
			"alpha": alpha,
			"level": level,
			"trend": trend,
			"mse":   mse,
		},
	}, nil
}

// smooth returns s[0] = x[0], s[t] = αx[t] + (1-α)s[t-1].
func smooth(values []float64, alpha float64) []float64 {
	smoothed := make([]float64, len(values))
	if len(values) == 0 {
		return smoothed
	}
	smoothed[0] = values[0]
	for t := 1; t < len(values); t++ {
		smoothed[t] = alpha*values[t] + (1-alpha)*smoothed[t-1]
	}
	return smoothed
}

// oneStepMSE scores s[t-1] as the forecast of x[t] for t = 1..n-1.
func oneStepMSE(values, smoothed []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for t := 1; t < len(values); t++ {
		diff := values[t] - smoothed[t-1]
		sum += diff * diff
	}
	return sum / float64(len(values)-1)
}

// optimizeAlpha returns the grid alpha with the lowest one-step MSE.
// Ties keep the smaller alpha.
func optimizeAlpha(values []float64) (alpha, mse float64) {
	alpha = AlphaGrid[0]
	mse = math.Inf(1)
	for _, candidate := range AlphaGrid {
		m := oneStepMSE(values, smooth(values, candidate))
		if m < mse {
			alpha, mse = candidate, m
		}
	}
	return alpha, mse
}
