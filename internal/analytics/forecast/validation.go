package forecast

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// Validation recommendations.
const (
	recommendMoreData     = "Increase the amount of historical data to improve cross-validation accuracy"
	recommendOverfitting  = "Check for overfitting: the model performs poorly on the most recent data"
	recommendHighVolatile = "Predictions vary between history windows; high volatility may make forecasts unreliable"
)

// validate runs the three validation checks concurrently with the linear method.
func validate(ctx context.Context, values []float64, h Horizon) (ValidationMetrics, error) {
	var metrics ValidationMetrics
	lf := NewLinearForecaster()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		score, err := crossValidationScore(gctx, lf, values, h)
		metrics.CrossValidationScore = score
		return err
	})
	g.Go(func() error {
		metrics.HoldoutScore = holdoutScore(lf, values, h)
		return gctx.Err()
	})
	g.Go(func() error {
		metrics.StabilityScore = stabilityScore(lf, values, h)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return ValidationMetrics{}, err
	}
	return metrics, nil
}

// crossValidationScore splits values into contiguous folds, the last one
// absorbing the remainder, and trains on all other folds concatenated. Folds
// are scored concurrently. Folds that cannot be scored are skipped; no scored
// fold gives 0.
func crossValidationScore(ctx context.Context, f MethodForecaster, values []float64, h Horizon) (float64, error) {
	n := len(values)
	foldSize := n / crossValidationFolds
	if foldSize == 0 {
		return 0, nil
	}

	scores := make([]float64, crossValidationFolds)
	scored := make([]bool, crossValidationFolds)

	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < crossValidationFolds; k++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := k * foldSize
			end := start + foldSize
			if k == crossValidationFolds-1 {
				end = n
			}

			test := values[start:end]
			train := make([]float64, 0, n-len(test))
			train = append(train, values[:start]...)
			train = append(train, values[end:]...)

			scores[k], scored[k] = trainAndScore(f, train, test, h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total, count := 0.0, 0
	for k := range scores {
		if !scored[k] {
			continue
		}
		total += scores[k]
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

// holdoutScore trains on the first 80% and scores the last 20%.
func holdoutScore(f MethodForecaster, values []float64, h Horizon) float64 {
	split := len(values) * 4 / 5
	score, ok := trainAndScore(f, values[:split], values[split:], h)
	if !ok {
		return 0
	}
	return score
}

// stabilityScore compares short forecasts from the first and the last 80% of
// values. Identical forecasts score 1.
func stabilityScore(f MethodForecaster, values []float64, h Horizon) float64 {
	n := len(values)
	size := n * 4 / 5
	if size < 2 {
		return 0
	}

	h.Periods = stabilityHorizon
	first, err := f.Forecast(values[:size], h)
	if err != nil {
		return 0
	}
	last, err := f.Forecast(values[n-size:], h)
	if err != nil {
		return 0
	}

	total := 0.0
	for i := range first.Points {
		total += similarity(first.Points[i].Value, last.Points[i].Value)
	}
	return total / float64(len(first.Points))
}

// similarity is 1 - |a-b| / mean(a, b), clamped to [0, 1].
func similarity(a, b float64) float64 {
	avg := (a + b) / 2
	if avg == 0 {
		if a == b {
			return 1
		}
		return 0
	}
	return clamp(1-math.Abs(a-b)/math.Abs(avg), 0, 1)
}

func trainAndScore(f MethodForecaster, train, test []float64, h Horizon) (float64, bool) {
	if len(train) < 2 || len(test) == 0 {
		return 0, false
	}
	h.Periods = len(test)
	mf, err := f.Forecast(train, h)
	if err != nil {
		return 0, false
	}
	return relativeAccuracy(test, mf.Values())
}

// relativeAccuracy averages clamp(1 - |error/actual|, 0, 1) over non-zero
// actuals. ok is false when every actual is zero.
func relativeAccuracy(actual, predicted []float64) (float64, bool) {
	total, count := 0.0, 0
	for i := range actual {
		if actual[i] == 0 || i >= len(predicted) {
			continue
		}
		total += clamp(1-math.Abs((actual[i]-predicted[i])/actual[i]), 0, 1)
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

func validationRecommendations(m ValidationMetrics) []string {
	recs := []string{}
	if m.CrossValidationScore <= crossValidationThreshold {
		recs = append(recs, recommendMoreData)
	}
	if m.HoldoutScore <= holdoutThreshold {
		recs = append(recs, recommendOverfitting)
	}
	if m.StabilityScore <= stabilityThreshold {
		recs = append(recs, recommendHighVolatile)
	}
	return recs
}

func (m ValidationMetrics) passes() bool {
	return m.CrossValidationScore > crossValidationThreshold &&
		m.HoldoutScore > holdoutThreshold &&
		m.StabilityScore > stabilityThreshold
}
