package services

import (
	"context"
	"time"

	"github.com/finsightapp/finsight/internal/analytics"
	"github.com/finsightapp/finsight/internal/analytics/anomaly"
	"github.com/finsightapp/finsight/internal/analytics/forecast"
	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/metrics"
	"github.com/finsightapp/finsight/internal/utils"
)

// ForecastService applies request defaults and limits, runs the engine under
// a deadline and records logs and metrics for every call.
type ForecastService struct {
	logger  *logging.Logger
	engine  forecast.Forecaster
	cfg     config.ForecastConfig
	metrics *metrics.Metrics
}

// NewForecastService creates a new ForecastService. m may be nil.
func NewForecastService(
	logger *logging.Logger,
	engine forecast.Forecaster,
	cfg config.ForecastConfig,
	m *metrics.Metrics,
) *ForecastService {
	return &ForecastService{
		logger:  logger,
		engine:  engine,
		cfg:     cfg,
		metrics: m,
	}
}

// SeriesInput is a historical series as received from callers. Values may be
// numbers or numeric strings.
type SeriesInput struct {
	Values     []interface{} `json:"values"`
	Timestamps []time.Time   `json:"timestamps,omitempty"`
}

// ForecastRequest represents a forecast request
type ForecastRequest struct {
	SeriesInput
	Method             string     `json:"method,omitempty"`
	Periods            int        `json:"periods,omitempty"`
	Confidence         float64    `json:"confidence,omitempty"`
	IncludeSeasonality bool       `json:"include_seasonality,omitempty"`
	LocaleContext      bool       `json:"locale_context,omitempty"`
	Anchor             *time.Time `json:"anchor,omitempty"`
}

// ForecastResponse is the engine result plus request bookkeeping
type ForecastResponse struct {
	*forecast.Result
	RequestedMethod string `json:"requested_method"`
	DataPoints      int    `json:"data_points"`
}

// ValidateRequest represents a model validation request
type ValidateRequest struct {
	SeriesInput
}

// ValidateResponse is the validation outcome plus request bookkeeping
type ValidateResponse struct {
	*forecast.ModelValidation
	DataPoints int `json:"data_points"`
}

// OutlierRequest represents an outlier detection request
type OutlierRequest struct {
	SeriesInput
	Multiplier float64 `json:"multiplier,omitempty"` // IQR fence multiplier, default 1.5
}

// OutlierPoint is one detected outlier
type OutlierPoint struct {
	Index     int                 `json:"index"`
	Value     float64             `json:"value"`
	Score     float64             `json:"score"`
	Type      anomaly.AnomalyType `json:"type"`
	Timestamp *time.Time          `json:"timestamp,omitempty"`
}

// OutlierResponse reports the fences, the outliers and the cleaned series
type OutlierResponse struct {
	Bounds      anomaly.Bounds `json:"bounds"`
	Replacement float64        `json:"replacement"`
	Outliers    []OutlierPoint `json:"outliers"`
	Cleaned     []float64      `json:"cleaned"`
}

// ModelMetrics returns the engine description
func (s *ForecastService) ModelMetrics() forecast.ModelMetrics {
	return s.engine.ModelMetrics()
}

// Forecast runs the engine on a request
func (s *ForecastService) Forecast(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	start := time.Now()

	opts, svcErr := s.buildOptions(req)
	if svcErr != nil {
		s.observe("forecast", req.Method, start, svcErr)
		return nil, svcErr
	}

	series, svcErr := s.buildSeries(req.SeriesInput)
	if svcErr != nil {
		s.observe("forecast", opts.Method.String(), start, svcErr)
		return nil, svcErr
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.engine.GenerateForecast(ctx, series, opts)
	if err != nil {
		svcErr := FromEngineError(err)
		s.observe("forecast", opts.Method.String(), start, svcErr)
		s.logger.WithContext(ctx).Warn("Forecast failed",
			"method", opts.Method.String(),
			"data_points", series.Len(),
			"code", svcErr.Code,
			"error", err)
		return nil, svcErr
	}

	s.observe("forecast", opts.Method.String(), start, nil)
	if s.metrics != nil {
		s.metrics.AddOutliers(len(result.Outliers))
		confidences := make([]float64, len(result.Predictions))
		for i, p := range result.Predictions {
			confidences[i] = p.Confidence
		}
		s.metrics.ObserveConfidence(result.Method.String(), confidences)
	}

	s.logger.WithContext(ctx).Info("Forecast completed",
		"requested_method", opts.Method.String(),
		"method", result.Method.String(),
		"periods", opts.Periods,
		"data_points", series.Len(),
		"outliers", len(result.Outliers),
		"mape", result.Accuracy.MAPE,
		"latency_ms", time.Since(start).Milliseconds())

	return &ForecastResponse{
		Result:          result,
		RequestedMethod: opts.Method.String(),
		DataPoints:      series.Len(),
	}, nil
}

// Validate scores the linear model on a request's series
func (s *ForecastService) Validate(ctx context.Context, req *ValidateRequest) (*ValidateResponse, error) {
	start := time.Now()

	series, svcErr := s.buildSeries(req.SeriesInput)
	if svcErr != nil {
		s.observe("validate", forecast.MethodLinear.String(), start, svcErr)
		return nil, svcErr
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	validation, err := s.engine.ValidateModel(ctx, series)
	if err != nil {
		svcErr := FromEngineError(err)
		s.observe("validate", forecast.MethodLinear.String(), start, svcErr)
		s.logger.WithContext(ctx).Warn("Model validation failed",
			"data_points", series.Len(),
			"code", svcErr.Code,
			"error", err)
		return nil, svcErr
	}

	s.observe("validate", forecast.MethodLinear.String(), start, nil)
	s.logger.WithContext(ctx).Info("Model validated",
		"data_points", series.Len(),
		"is_valid", validation.IsValid,
		"cross_validation", validation.Metrics.CrossValidationScore,
		"holdout", validation.Metrics.HoldoutScore,
		"stability", validation.Metrics.StabilityScore,
		"latency_ms", time.Since(start).Milliseconds())

	return &ValidateResponse{
		ModelValidation: validation,
		DataPoints:      series.Len(),
	}, nil
}

// DetectOutliers reports IQR outliers and the series cleaned the way the
// engine cleans it before forecasting.
func (s *ForecastService) DetectOutliers(ctx context.Context, req *OutlierRequest) (*OutlierResponse, error) {
	start := time.Now()

	series, svcErr := s.buildSeries(req.SeriesInput)
	if svcErr == nil {
		if err := forecast.ValidateSeries(series); err != nil {
			svcErr = FromEngineError(err)
		}
	}
	if svcErr != nil {
		s.observe("outliers", "iqr", start, svcErr)
		return nil, svcErr
	}

	multiplier := req.Multiplier
	if multiplier <= 0 {
		multiplier = anomaly.DefaultConfig().Threshold
	}

	results, err := anomaly.DetectAnomalies("iqr", series.Values, anomaly.DetectorConfig{
		Threshold:     multiplier,
		MinDataPoints: forecast.MinDataPoints,
	})
	if err != nil {
		svcErr := FromEngineError(err)
		s.observe("outliers", "iqr", start, svcErr)
		return nil, svcErr
	}

	bounds := anomaly.ComputeBounds(series.Values, multiplier)
	median := anomaly.Median(series.Values)
	cleaned, _ := forecast.ReplaceOutliers(series.Values, bounds, median)

	outliers := make([]OutlierPoint, len(results))
	for i, r := range results {
		outliers[i] = OutlierPoint{
			Index: r.Index,
			Value: r.Value,
			Score: r.Score,
			Type:  r.Type,
		}
		if r.Index < len(series.Timestamps) {
			ts := series.Timestamps[r.Index]
			outliers[i].Timestamp = &ts
		}
	}

	s.observe("outliers", "iqr", start, nil)
	s.logger.WithContext(ctx).Debug("Outliers detected",
		"data_points", series.Len(),
		"outliers", len(outliers),
		"multiplier", multiplier)

	return &OutlierResponse{
		Bounds:      bounds,
		Replacement: median,
		Outliers:    outliers,
		Cleaned:     cleaned,
	}, nil
}

// buildOptions fills request defaults from configuration and enforces limits
func (s *ForecastService) buildOptions(req *ForecastRequest) (forecast.Options, *ServiceError) {
	name := req.Method
	if name == "" {
		name = s.cfg.DefaultMethod
	}
	method, err := forecast.ParseMethod(name)
	if err != nil {
		return forecast.Options{}, NewServiceErrorWithDetails(CodeInvalidMethod, err.Error(), map[string]interface{}{
			"available_methods": methodNames(),
		})
	}

	opts := forecast.Options{
		Method:             method,
		Periods:            req.Periods,
		Confidence:         req.Confidence,
		IncludeSeasonality: req.IncludeSeasonality,
		LocaleContext:      req.LocaleContext,
	}
	if opts.Periods == 0 {
		opts.Periods = s.cfg.DefaultPeriods
	}
	if opts.Confidence == 0 {
		opts.Confidence = s.cfg.DefaultConfidence
	}
	if req.Anchor != nil {
		opts.Anchor = *req.Anchor
	}

	if s.cfg.MaxPeriods > 0 && opts.Periods > s.cfg.MaxPeriods {
		return forecast.Options{}, NewServiceErrorWithDetails(CodeInvalidOptions, "periods exceeds the configured maximum", map[string]interface{}{
			"periods":     opts.Periods,
			"max_periods": s.cfg.MaxPeriods,
		})
	}
	return opts, nil
}

// buildSeries converts raw input values and enforces the series length limit
func (s *ForecastService) buildSeries(in SeriesInput) (analytics.TimeSeries, *ServiceError) {
	if s.cfg.MaxSeriesLength > 0 && len(in.Values) > s.cfg.MaxSeriesLength {
		return analytics.TimeSeries{}, NewServiceErrorWithDetails(CodeSeriesTooLong, "series exceeds the configured maximum length", map[string]interface{}{
			"data_points":       len(in.Values),
			"max_series_length": s.cfg.MaxSeriesLength,
		})
	}

	values, err := utils.ParseValues(in.Values)
	if err != nil {
		return analytics.TimeSeries{}, NewServiceError(CodeInvalidValues, err.Error())
	}
	return analytics.TimeSeries{Values: values, Timestamps: in.Timestamps}, nil
}

func (s *ForecastService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = utils.DefaultRequestTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *ForecastService) observe(operation, method string, start time.Time, svcErr *ServiceError) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	if svcErr != nil {
		outcome = metrics.OutcomeFailure
		if svcErr.IsClientError() {
			outcome = metrics.OutcomeValidationError
		}
	}
	s.metrics.ObserveRequest(operation, method, outcome, time.Since(start))
}

func methodNames() []string {
	names := make([]string, len(forecast.Methods))
	for i, m := range forecast.Methods {
		names[i] = m.String()
	}
	return names
}
