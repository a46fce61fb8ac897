package forecast

import (
	"fmt"
	"math"

	"github.com/finsightapp/finsight/internal/analytics"
)

// SeasonalForecaster scales a linear trend from the series mean by a 12-slot
// multiplicative seasonal index.
type SeasonalForecaster struct {
	period int
}

// NewSeasonalForecaster creates a seasonal forecaster over SeasonLength slots
func NewSeasonalForecaster() *SeasonalForecaster {
	return &SeasonalForecaster{period: SeasonLength}
}

// Name returns the method name
func (f *SeasonalForecaster) Name() string {
	return MethodSeasonal.String()
}

// Forecast predicts (mean + i·slope)·index[(n+i-1) mod period], floored at zero.
func (f *SeasonalForecaster) Forecast(values []float64, h Horizon) (*MethodForecast, error) {
	fit, err := fitLine(values)
	if err != nil {
		return nil, fmt.Errorf("seasonal: %w", err)
	}

	mean := analytics.Mean(values)
	stdDev := analytics.StdDev(values)
	index := seasonalIndex(values, f.period)
	n := len(values)

	points := make([]ForecastPoint, h.Periods)
	for i := 1; i <= h.Periods; i++ {
		trend := mean + float64(i)*fit.Slope
		value := math.Max(0, trend*index[(n+i-1)%f.period])
		points[i-1] = ForecastPoint{
			Timestamp:  h.timestamp(i),
			Value:      value,
			Confidence: clamp(zScoreConfidence(zScore(value, mean, stdDev)), 0.5, 1),
		}
	}

	params := map[string]float64{
		"slope": fit.Slope,
		"level": mean,
	}
	for slot, factor := range index {
		params[fmt.Sprintf("season_%02d", slot)] = factor
	}

	return &MethodForecast{
		Method:     MethodSeasonal,
		Points:     points,
		Parameters: params,
	}, nil
}
