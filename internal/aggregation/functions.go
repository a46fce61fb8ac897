package aggregation

import (
	"fmt"
	"strings"
)

// Function selects the statistic a bucket is reduced to
type Function string

const (
	FunctionSum   Function = "sum"
	FunctionAvg   Function = "avg"
	FunctionMin   Function = "min"
	FunctionMax   Function = "max"
	FunctionLast  Function = "last"
	FunctionCount Function = "count"
)

// ParseFunction parses a function name; "mean" is accepted for avg
func ParseFunction(s string) (Function, error) {
	switch f := Function(strings.ToLower(strings.TrimSpace(s))); f {
	case FunctionSum, FunctionAvg, FunctionMin, FunctionMax, FunctionLast, FunctionCount:
		return f, nil
	case "mean":
		return FunctionAvg, nil
	default:
		return "", fmt.Errorf("unknown aggregation function %q", s)
	}
}

// additive functions describe flows: an empty bucket means nothing happened
func (f Function) additive() bool {
	return f == FunctionSum || f == FunctionCount
}

// Bucket holds the statistics of the observations in one period
type Bucket struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Last  float64
}

// NewBucket creates a bucket from its first observation
func NewBucket(value float64) *Bucket {
	return &Bucket{
		Count: 1,
		Sum:   value,
		Min:   value,
		Max:   value,
		Last:  value,
	}
}

// Add folds the next observation, in time order, into the bucket
func (b *Bucket) Add(value float64) {
	b.Count++
	b.Sum += value
	if value < b.Min {
		b.Min = value
	}
	if value > b.Max {
		b.Max = value
	}
	b.Last = value
}

// Avg returns the mean of the bucket
func (b *Bucket) Avg() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.Sum / float64(b.Count)
}

// Value reduces the bucket with f
func (b *Bucket) Value(f Function) float64 {
	switch f {
	case FunctionAvg:
		return b.Avg()
	case FunctionMin:
		return b.Min
	case FunctionMax:
		return b.Max
	case FunctionLast:
		return b.Last
	case FunctionCount:
		return float64(b.Count)
	default:
		return b.Sum
	}
}
