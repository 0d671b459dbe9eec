package common

import (
	"fmt"
	"strings"
	"time"
)

// TimeRange selects the analysis window for flow reports.
type TimeRange string

const (
	RangeToday TimeRange = "today"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
)

// ValidTimeRanges contains all recognized analysis ranges
var ValidTimeRanges = map[TimeRange]bool{
	RangeToday: true,
	RangeWeek:  true,
	RangeMonth: true,
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ParseTimeRange normalizes a range string. An empty string defaults to
// RangeToday; anything else unrecognized is an error.
func ParseTimeRange(s string) (TimeRange, error) {
	if s == "" {
		return RangeToday, nil
	}
	r := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if !ValidTimeRanges[r] {
		return "", fmt.Errorf("invalid time range %q (expected today, week, or month)", s)
	}
	return r, nil
}

// Window returns the current analysis window for the range, anchored at now.
// Today spans from local midnight, week the trailing 7 days, and month one
// calendar month back (AddDate semantics, so Jan 31 anchors to Dec 31).
func (r TimeRange) Window(now time.Time) Window {
	switch r {
	case RangeWeek:
		return Window{Start: now.AddDate(0, 0, -7), End: now}
	case RangeMonth:
		return Window{Start: now.AddDate(0, -1, 0), End: now}
	default:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Start: midnight, End: now}
	}
}

// HistoricalWindow returns the baseline window of the given length in days
// ending where the current window starts.
func HistoricalWindow(current Window, days int) Window {
	if days <= 0 {
		days = 30
	}
	return Window{
		Start: current.Start.AddDate(0, 0, -days),
		End:   current.Start,
	}
}
