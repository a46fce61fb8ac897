package forecast

import (
	"fmt"
	"math"

	"github.com/finsightapp/finsight/internal/analytics"
)

// lineFit is an ordinary least-squares line over the series index.
type lineFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

func (l lineFit) at(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// fitLine regresses values against their index 0..n-1.
func fitLine(values []float64) (lineFit, error) {
	if len(values) < 2 {
		return lineFit{}, fmt.Errorf("linear fit needs at least 2 points, have %d", len(values))
	}

	n := float64(len(values))
	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return lineFit{}, fmt.Errorf("cannot calculate regression: all x values are the same")
	}

	fit := lineFit{}
	fit.Slope = (n*sumXY - sumX*sumY) / denominator
	fit.Intercept = (sumY - fit.Slope*sumX) / n

	mean := sumY / n
	ssTot, ssRes := 0.0, 0.0
	for i, v := range values {
		ssTot += (v - mean) * (v - mean)
		r := v - fit.at(float64(i))
		ssRes += r * r
	}
	// A flat series is fitted exactly by a flat line.
	if ssTot == 0 {
		fit.RSquared = 1
	} else {
		fit.RSquared = 1 - ssRes/ssTot
	}

	if math.IsNaN(fit.Slope) || math.IsNaN(fit.Intercept) {
		return lineFit{}, fmt.Errorf("regression produced NaN coefficients")
	}
	return fit, nil
}

// trendStrength is |slope| relative to the mean level.
func trendStrength(values []float64, slope float64) float64 {
	mean := analytics.Mean(values)
	if mean == 0 {
		return 0
	}
	return math.Abs(slope) / mean
}

// seasonalIndex averages value/mean per phase over period slots.
// Slots with no observations, or a zero-mean series, get 1.
func seasonalIndex(values []float64, period int) []float64 {
	index := make([]float64, period)
	for i := range index {
		index[i] = 1
	}
	mean := analytics.Mean(values)
	if mean == 0 || period <= 0 {
		return index
	}

	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range values {
		slot := i % period
		sums[slot] += v / mean
		counts[slot]++
	}
	for slot := range index {
		if counts[slot] > 0 {
			index[slot] = sums[slot] / float64(counts[slot])
		}
	}
	return index
}

// seasonalityStrength is the variance of the seasonal index relative to the
// variance of the series. It needs two full seasons.
func seasonalityStrength(values []float64, period int) float64 {
	if period <= 0 || len(values) < 2*period {
		return 0
	}
	variance := analytics.Variance(values)
	if variance == 0 {
		return 0
	}
	return analytics.Variance(seasonalIndex(values, period)) / variance
}

// volatility is the coefficient of variation.
func volatility(values []float64) float64 {
	mean := analytics.Mean(values)
	if mean == 0 {
		return 0
	}
	return analytics.StdDev(values) / mean
}

func zScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return math.Abs(value-mean) / stdDev
}

// zScoreConfidence maps a z-score into (0, 1]; z = 0 gives 1.
func zScoreConfidence(z float64) float64 {
	return 1 / (1 + z)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Profile summarises the characteristics used by adaptive selection.
type Profile struct {
	Slope               float64 `json:"slope"`
	TrendStrength       float64 `json:"trend_strength"`
	SeasonalityStrength float64 `json:"seasonality_strength"`
	Volatility          float64 `json:"volatility"`
}

// ProfileSeries measures trend, seasonality and volatility of values.
func ProfileSeries(values []float64) (Profile, error) {
	fit, err := fitLine(values)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Slope:               fit.Slope,
		TrendStrength:       trendStrength(values, fit.Slope),
		SeasonalityStrength: seasonalityStrength(values, SeasonLength),
		Volatility:          volatility(values),
	}, nil
}
