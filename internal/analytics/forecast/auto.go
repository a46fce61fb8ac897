package forecast

// SelectMethod picks a concrete method from the series profile:
// seasonal if seasonality is strong, linear if the trend is strong and the
// series calm, exponential smoothing otherwise.
func SelectMethod(p Profile) Method {
	switch {
	case p.SeasonalityStrength > seasonalityThreshold:
		return MethodSeasonal
	case p.TrendStrength > trendThreshold && p.Volatility < volatilityThreshold:
		return MethodLinear
	default:
		return MethodExponential
	}
}

// SelectMethodFor profiles values and selects a method for them.
func SelectMethodFor(values []float64) (Method, Profile, error) {
	p, err := ProfileSeries(values)
	if err != nil {
		return MethodExponential, Profile{}, err
	}
	return SelectMethod(p), p, nil
}

// resolveMethod turns MethodAdaptive into a concrete method for values.
func resolveMethod(m Method, values []float64) (Method, error) {
	if m != MethodAdaptive {
		return m, nil
	}
	selected, _, err := SelectMethodFor(values)
	return selected, err
}
