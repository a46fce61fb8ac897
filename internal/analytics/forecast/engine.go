package forecast

import (
	"context"
	"math"
	"time"

	"golang.org/x/text/language"

	"github.com/finsightapp/finsight/internal/analytics"
)

// Engine identity reported by ModelMetrics.
const (
	EngineName    = "finsight-statistical-forecaster"
	EngineVersion = "1.0.0"
)

// Engine is the stateless forecasting engine. It is safe for concurrent use.
type Engine struct {
	now    func() time.Time
	locale language.Tag
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to anchor forecasts when Options.Anchor is zero.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocale sets the locale for region-specific recommendations.
func WithLocale(tag language.Tag) Option {
	return func(e *Engine) {
		e.locale = tag
	}
}

// NewEngine creates an engine using the wall clock and en-US formatting.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		locale: language.AmericanEnglish,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Forecaster = (*Engine)(nil)

// ValidateSeries checks a series before any computation. Timestamps may be
// omitted; when present they must match the values one to one.
func ValidateSeries(series analytics.TimeSeries) error {
	n := len(series.Values)
	if n < MinDataPoints {
		return newError(ErrInsufficientData, "validate", "need at least %d data points, have %d", MinDataPoints, n)
	}
	if len(series.Timestamps) != 0 && len(series.Timestamps) != n {
		return newError(ErrInvalidValues, "validate", "%d timestamps for %d values", len(series.Timestamps), n)
	}
	for i, v := range series.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return newError(ErrInvalidValues, "validate", "value at index %d is not finite", i)
		}
		if v < 0 {
			return newError(ErrInvalidValues, "validate", "value at index %d is negative (%v)", i, v)
		}
	}
	return nil
}

func (e *Engine) anchor(opts Options) time.Time {
	if !opts.Anchor.IsZero() {
		return opts.Anchor
	}
	return e.now()
}

// GenerateForecast cleans the series, runs the requested (or adaptively
// selected) method and attaches intervals, accuracy, insights and
// recommendations.
func (e *Engine) GenerateForecast(ctx context.Context, series analytics.TimeSeries, opts Options) (*Result, error) {
	const op = "forecast"

	if err := ValidateSeries(series); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, computationFailure(op, err)
	}

	pre := Preprocess(series.Values)
	profile, err := ProfileSeries(pre.Values)
	if err != nil {
		return nil, computationFailure(op, err)
	}

	method := opts.Method
	if method == MethodAdaptive {
		method = SelectMethod(profile)
	}
	forecaster, err := forecasterFor(method)
	if err != nil {
		return nil, computationFailure(op, err)
	}

	h := Horizon{
		Periods:      opts.Periods,
		Anchor:       e.anchor(opts),
		OutlierRatio: pre.OutlierRatio(),
	}
	mf, err := forecaster.Forecast(pre.Values, h)
	if err != nil {
		return nil, computationFailure(op, err)
	}

	accuracy, err := EvaluateAccuracy(pre.Values, method, h)
	if err != nil {
		return nil, computationFailure(op, err)
	}

	params := mf.Parameters
	if params == nil {
		params = map[string]float64{}
	}
	params["outlier_ratio"] = pre.OutlierRatio()
	params["trend_strength"] = profile.TrendStrength
	params["seasonality_strength"] = profile.SeasonalityStrength
	params["volatility"] = profile.Volatility

	return &Result{
		Method:              method,
		Parameters:          params,
		Predictions:         mf.Points,
		ConfidenceIntervals: BuildConfidenceIntervals(mf.Points, analytics.StdDev(pre.Values), opts.Confidence),
		Accuracy:            accuracy,
		Outliers:            pre.Outliers,
		Insights:            generateInsights(pre.Values, mf.Points, opts, profile),
		Recommendations:     generateRecommendations(pre.Values, mf.Points, opts, e.locale),
	}, nil
}

// ValidateModel scores the linear method on the cleaned series with
// cross-validation, a holdout split and a stability check.
func (e *Engine) ValidateModel(ctx context.Context, series analytics.TimeSeries) (*ModelValidation, error) {
	const op = "validate_model"

	if err := ValidateSeries(series); err != nil {
		return nil, err
	}

	pre := Preprocess(series.Values)
	h := Horizon{Anchor: e.now(), OutlierRatio: pre.OutlierRatio()}
	metrics, err := validate(ctx, pre.Values, h)
	if err != nil {
		return nil, computationFailure(op, err)
	}

	return &ModelValidation{
		IsValid:         metrics.passes(),
		Metrics:         metrics,
		Recommendations: validationRecommendations(metrics),
	}, nil
}

// ModelMetrics returns the engine's static description.
func (e *Engine) ModelMetrics() ModelMetrics {
	return ModelMetrics{
		Name:              EngineName,
		Version:           EngineVersion,
		Methods:           append([]Method(nil), Methods...),
		SeasonLength:      SeasonLength,
		MinDataPoints:     MinDataPoints,
		OutlierMultiplier: outlierMultiplier,
		AlphaGrid:         append([]float64(nil), AlphaGrid...),
		ConfidenceLevels:  append([]float64(nil), ConfidenceLevels...),
		ValidationThresholds: ValidationMetrics{
			CrossValidationScore: crossValidationThreshold,
			HoldoutScore:         holdoutThreshold,
			StabilityScore:       stabilityThreshold,
		},
		CrossValidationFolds: crossValidationFolds,
		Capabilities: []string{
			"outlier_cleaning",
			"adaptive_method_selection",
			"confidence_intervals",
			"holdout_accuracy",
			"cross_validation",
			"insights",
			"locale_recommendations",
		},
	}
}
