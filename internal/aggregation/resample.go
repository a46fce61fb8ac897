package aggregation

import (
	"errors"
	"sort"

	"github.com/finsightapp/finsight/internal/analytics"
)

// ErrNoTimestamps is returned when a series without timestamps is resampled
var ErrNoTimestamps = errors.New("resampling needs a timestamp for every value")

// Resample rolls series up into consecutive buckets of level, from the
// bucket of the earliest observation to the bucket of the latest.
// Buckets without observations are 0 for additive functions (sum, count)
// and repeat the previous bucket's value otherwise. The result is stamped
// with bucket start times and carries the input metadata.
func Resample(series analytics.TimeSeries, level Level, fn Function) (analytics.TimeSeries, error) {
	if len(series.Values) == 0 {
		return analytics.TimeSeries{Metadata: series.Metadata}, nil
	}
	if len(series.Timestamps) != len(series.Values) {
		return analytics.TimeSeries{}, ErrNoTimestamps
	}

	points := series.Points()
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	buckets := make(map[int64]*Bucket)
	for _, p := range points {
		key := level.Truncate(p.Time).UnixNano()
		if b, ok := buckets[key]; ok {
			b.Add(p.Value)
		} else {
			buckets[key] = NewBucket(p.Value)
		}
	}

	first := level.Truncate(points[0].Time)
	last := level.Truncate(points[len(points)-1].Time)

	out := analytics.TimeSeries{Metadata: series.Metadata}
	previous := 0.0
	for start := first; !start.After(last); start = level.Next(start) {
		value := 0.0
		if b, ok := buckets[start.UnixNano()]; ok {
			value = b.Value(fn)
		} else if !fn.additive() {
			value = previous
		}
		out.Values = append(out.Values, value)
		out.Timestamps = append(out.Timestamps, start)
		previous = value
	}
	return out, nil
}
