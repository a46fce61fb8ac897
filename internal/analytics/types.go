// Package analytics provides the common time-series types shared by the
// forecasting engine and the anomaly detectors.
package analytics

import (
	"math"
	"time"
)

// TimeSeries is an ordered sequence of observations with parallel timestamps.
// Values and Timestamps must have the same length.
type TimeSeries struct {
	Values     []float64         `json:"values"`
	Timestamps []time.Time       `json:"timestamps"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// TimeSeriesPoint represents a single observation with its time.
type TimeSeriesPoint struct {
	Time  time.Time
	Value float64
}

// NewTimeSeries builds a series from values, stamping them one calendar month
// apart ending at end.
func NewTimeSeries(values []float64, end time.Time) TimeSeries {
	timestamps := make([]time.Time, len(values))
	for i := range values {
		timestamps[i] = end.AddDate(0, i-len(values)+1, 0)
	}
	return TimeSeries{Values: values, Timestamps: timestamps}
}

// Points returns the series as a slice of points. Missing timestamps are left zero.
func (ts TimeSeries) Points() []TimeSeriesPoint {
	points := make([]TimeSeriesPoint, len(ts.Values))
	for i, v := range ts.Values {
		points[i].Value = v
		if i < len(ts.Timestamps) {
			points[i].Time = ts.Timestamps[i]
		}
	}
	return points
}

// Len returns the number of observations
func (ts TimeSeries) Len() int {
	return len(ts.Values)
}

// Mean calculates the mean of all values
func (ts TimeSeries) Mean() float64 {
	return Mean(ts.Values)
}

// StdDev calculates the sample standard deviation of all values
func (ts TimeSeries) StdDev() float64 {
	return StdDev(ts.Values)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the sample variance (n-1 denominator), or 0 below two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(values)-1)
}

// StdDev returns the sample standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}
