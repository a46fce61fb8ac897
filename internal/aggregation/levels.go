// Package aggregation rolls timestamped observations up into calendar
// buckets, e.g. daily bank transactions into monthly totals.
package aggregation

import (
	"fmt"
	"strings"
	"time"
)

// Level represents the time bucket size
type Level string

const (
	LevelDaily     Level = "daily"
	LevelWeekly    Level = "weekly"
	LevelMonthly   Level = "monthly"
	LevelQuarterly Level = "quarterly"
	LevelYearly    Level = "yearly"
)

// Levels lists the supported levels from finest to coarsest
var Levels = []Level{LevelDaily, LevelWeekly, LevelMonthly, LevelQuarterly, LevelYearly}

// ParseLevel accepts a level name or its short form (1d, 1w, 1M, 1q, 1y)
func ParseLevel(s string) (Level, error) {
	switch s {
	case "1d":
		return LevelDaily, nil
	case "1w":
		return LevelWeekly, nil
	case "1M":
		return LevelMonthly, nil
	case "1q":
		return LevelQuarterly, nil
	case "1y":
		return LevelYearly, nil
	}
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range Levels {
		if l == level {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown aggregation level %q", s)
}

// Truncate returns the start of the bucket containing t, in t's location.
// Weeks start on Monday.
func (l Level) Truncate(t time.Time) time.Time {
	switch l {
	case LevelWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case LevelMonthly:
		return TruncateToMonth(t)
	case LevelQuarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
	case LevelYearly:
		return TruncateToYear(t)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// Next returns the start of the bucket after the one starting at start
func (l Level) Next(start time.Time) time.Time {
	switch l {
	case LevelWeekly:
		return start.AddDate(0, 0, 7)
	case LevelMonthly:
		return start.AddDate(0, 1, 0)
	case LevelQuarterly:
		return start.AddDate(0, 3, 0)
	case LevelYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// TruncateToMonth truncates time to the start of the month
func TruncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TruncateToYear truncates time to the start of the year
func TruncateToYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}
