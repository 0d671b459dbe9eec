package common

import (
	"testing"
	"time"
)

func TestParseTimeRange_EmptyDefaultsToToday(t *testing.T) {
	r, err := ParseTimeRange("")
	if err != nil {
		t.Fatalf("ParseTimeRange(\"\") error = %v", err)
	}
	if r != RangeToday {
		t.Errorf("ParseTimeRange(\"\") = %q, want %q", r, RangeToday)
	}
}

func TestParseTimeRange_Normalizes(t *testing.T) {
	for _, in := range []string{"week", "WEEK", " Week "} {
		r, err := ParseTimeRange(in)
		if err != nil {
			t.Fatalf("ParseTimeRange(%q) error = %v", in, err)
		}
		if r != RangeWeek {
			t.Errorf("ParseTimeRange(%q) = %q, want %q", in, r, RangeWeek)
		}
	}
}

func TestParseTimeRange_Invalid(t *testing.T) {
	if _, err := ParseTimeRange("fortnight"); err == nil {
		t.Error("ParseTimeRange(\"fortnight\") expected error, got nil")
	}
}

func TestTimeRange_Window_Today(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	w := RangeToday.Window(now)

	wantStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Window.Start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(now) {
		t.Errorf("Window.End = %v, want %v", w.End, now)
	}
}

func TestTimeRange_Window_Week(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	w := RangeWeek.Window(now)

	wantStart := time.Date(2025, 6, 8, 14, 30, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Window.Start = %v, want %v", w.Start, wantStart)
	}
}

func TestTimeRange_Window_MonthUsesCalendarArithmetic(t *testing.T) {
	// AddDate semantics: Mar 31 minus one month normalizes through Feb
	now := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	w := RangeMonth.Window(now)

	wantStart := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Window.Start = %v, want %v", w.Start, wantStart)
	}
}

func TestWindow_Contains(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	if !w.Contains(w.Start) {
		t.Error("Contains(Start) = false, want true (inclusive start)")
	}
	if w.Contains(w.End) {
		t.Error("Contains(End) = true, want false (exclusive end)")
	}
	if w.Contains(w.Start.Add(-time.Nanosecond)) {
		t.Error("Contains(before Start) = true, want false")
	}
}

func TestHistoricalWindow_EndsAtCurrentStart(t *testing.T) {
	current := Window{
		Start: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC),
	}
	h := HistoricalWindow(current, 30)

	if !h.End.Equal(current.Start) {
		t.Errorf("HistoricalWindow.End = %v, want %v", h.End, current.Start)
	}
	wantStart := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)
	if !h.Start.Equal(wantStart) {
		t.Errorf("HistoricalWindow.Start = %v, want %v", h.Start, wantStart)
	}
}

func TestHistoricalWindow_ZeroDaysDefaultsTo30(t *testing.T) {
	current := Window{
		Start: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC),
	}
	h := HistoricalWindow(current, 0)

	wantStart := current.Start.AddDate(0, 0, -30)
	if !h.Start.Equal(wantStart) {
		t.Errorf("HistoricalWindow.Start = %v, want %v (30-day default)", h.Start, wantStart)
	}
}
