package forecast

import (
	"math"
	"time"

	"github.com/finsightapp/finsight/internal/analytics"
)

// testAnchor is the fixed anchor used across tests.
var testAnchor = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSeries(values []float64) analytics.TimeSeries {
	return analytics.NewTimeSeries(values, testAnchor)
}

func linearValues(n int, start, step float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = start + step*float64(i)
	}
	return values
}

// seasonalValues repeats six low months then six high months around 1.
func seasonalValues(cycles int) []float64 {
	values := make([]float64, 0, cycles*SeasonLength)
	for c := 0; c < cycles; c++ {
		for slot := 0; slot < SeasonLength; slot++ {
			if slot < SeasonLength/2 {
				values = append(values, 0.5)
			} else {
				values = append(values, 1.5)
			}
		}
	}
	return values
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
