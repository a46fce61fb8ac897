package forecast

import "fmt"

// accuracyHoldout is 20% of n, at least 1 and at most maxAccuracyHoldout.
func accuracyHoldout(n int) int {
	holdout := n / 5
	if holdout > maxAccuracyHoldout {
		holdout = maxAccuracyHoldout
	}
	if holdout < 1 {
		holdout = 1
	}
	return holdout
}

// EvaluateAccuracy trains method on a prefix of values and scores its
// predictions against the held-out tail. MethodAdaptive is resolved on the
// prefix.
func EvaluateAccuracy(values []float64, method Method, h Horizon) (ModelAccuracy, error) {
	n := len(values)
	holdout := accuracyHoldout(n)
	if n-holdout < 2 {
		return ModelAccuracy{}, fmt.Errorf("accuracy: need at least %d points, have %d", holdout+2, n)
	}

	train := values[:n-holdout]
	actual := values[n-holdout:]

	resolved, err := resolveMethod(method, train)
	if err != nil {
		return ModelAccuracy{}, fmt.Errorf("accuracy: %w", err)
	}
	forecaster, err := forecasterFor(resolved)
	if err != nil {
		return ModelAccuracy{}, fmt.Errorf("accuracy: %w", err)
	}
	h.Periods = holdout
	mf, err := forecaster.Forecast(train, h)
	if err != nil {
		return ModelAccuracy{}, fmt.Errorf("accuracy: %w", err)
	}

	fit, err := fitLine(train)
	if err != nil {
		return ModelAccuracy{}, fmt.Errorf("accuracy: %w", err)
	}

	predicted := mf.Values()
	mape := CalculateMAPE(actual, predicted)
	return ModelAccuracy{
		MAPE:       mape,
		RMSE:       CalculateRMSE(actual, predicted),
		RSquared:   fit.RSquared,
		Confidence: clamp(1-mape/100, 0.5, 1),
	}, nil
}
