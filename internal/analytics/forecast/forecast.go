// Package forecast implements the statistical forecasting engine: input
// validation and outlier cleaning, linear / exponential smoothing / seasonal
// methods, adaptive method selection, confidence intervals, accuracy scoring,
// model validation and plain-language insights.
package forecast

import (
	"context"
	"math"
	"time"

	"github.com/finsightapp/finsight/internal/analytics"
)

// Engine constants.
const (
	// SeasonLength is the number of slots in the seasonal index (monthly data).
	SeasonLength = 12
	// MinDataPoints is the shortest series the engine accepts.
	MinDataPoints = 3

	outlierMultiplier = 1.5

	seasonalityThreshold = 0.3
	trendThreshold       = 0.5
	volatilityThreshold  = 0.3

	crossValidationFolds     = 5
	crossValidationThreshold = 0.6
	holdoutThreshold         = 0.6
	stabilityThreshold       = 0.7
	stabilityHorizon         = 3

	maxAccuracyHoldout = 6
)

// AlphaGrid holds the smoothing factors searched by exponential smoothing.
var AlphaGrid = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

// Forecaster is the engine's public capability set.
type Forecaster interface {
	GenerateForecast(ctx context.Context, series analytics.TimeSeries, opts Options) (*Result, error)
	ValidateModel(ctx context.Context, series analytics.TimeSeries) (*ModelValidation, error)
	ModelMetrics() ModelMetrics
}

// Options controls a single forecast run.
type Options struct {
	Method     Method  `json:"method"`
	Periods    int     `json:"periods"`
	Confidence float64 `json:"confidence"`
	// IncludeSeasonality adds a seasonal-pattern insight when one is detected.
	IncludeSeasonality bool `json:"include_seasonality"`
	// LocaleContext adds region-specific recommendations.
	LocaleContext bool `json:"locale_context"`
	// Anchor is the time the first forecast step is counted from.
	// Zero means the engine clock.
	Anchor time.Time `json:"anchor,omitempty"`
}

// DefaultOptions returns adaptive, six periods at 95% confidence.
func DefaultOptions() Options {
	return Options{
		Method:     MethodAdaptive,
		Periods:    6,
		Confidence: 0.95,
	}
}

func (o Options) validate() error {
	if !o.Method.Valid() {
		return newError(ErrInvalidOptions, "options", "unknown method %d", int(o.Method))
	}
	if o.Periods < 1 {
		return newError(ErrInvalidOptions, "options", "periods must be positive, got %d", o.Periods)
	}
	if math.IsNaN(o.Confidence) || o.Confidence <= 0 || o.Confidence > 1 {
		return newError(ErrInvalidOptions, "options", "confidence must be in (0, 1], got %v", o.Confidence)
	}
	return nil
}

// ForecastPoint is a single predicted value.
type ForecastPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
}

// ConfidenceInterval bounds a prediction at a given probability.
type ConfidenceInterval struct {
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
	Probability float64 `json:"probability"`
}

// ModelAccuracy scores the chosen method against a holdout of the history.
type ModelAccuracy struct {
	MAPE       float64 `json:"mape"`
	RMSE       float64 `json:"rmse"`
	RSquared   float64 `json:"r_squared"`
	Confidence float64 `json:"confidence"`
}

// Result is the output of GenerateForecast.
type Result struct {
	Method              Method               `json:"method"`
	Parameters          map[string]float64   `json:"parameters,omitempty"`
	Predictions         []ForecastPoint      `json:"predictions"`
	ConfidenceIntervals []ConfidenceInterval `json:"confidence_intervals"`
	Accuracy            ModelAccuracy        `json:"accuracy"`
	Outliers            []int                `json:"outliers,omitempty"`
	Insights            []string             `json:"insights"`
	Recommendations     []string             `json:"recommendations"`
}

// Values returns the predicted values in order.
func (r *Result) Values() []float64 {
	return pointValues(r.Predictions)
}

// ValidationMetrics are the three model validation scores, each in [0, 1].
type ValidationMetrics struct {
	CrossValidationScore float64 `json:"cross_validation_score"`
	HoldoutScore         float64 `json:"holdout_score"`
	StabilityScore       float64 `json:"stability_score"`
}

// ModelValidation is the output of ValidateModel.
type ModelValidation struct {
	IsValid         bool              `json:"is_valid"`
	Metrics         ValidationMetrics `json:"metrics"`
	Recommendations []string          `json:"recommendations"`
}

// ModelMetrics describes the engine's static configuration and capabilities.
type ModelMetrics struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Methods              []Method          `json:"methods"`
	SeasonLength         int               `json:"season_length"`
	MinDataPoints        int               `json:"min_data_points"`
	OutlierMultiplier    float64           `json:"outlier_multiplier"`
	AlphaGrid            []float64         `json:"alpha_grid"`
	ConfidenceLevels     []float64         `json:"confidence_levels"`
	ValidationThresholds ValidationMetrics `json:"validation_thresholds"`
	CrossValidationFolds int               `json:"cross_validation_folds"`
	Capabilities         []string          `json:"capabilities"`
}

// CalculateMAPE calculates Mean Absolute Percentage Error, skipping zero actuals.
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}
