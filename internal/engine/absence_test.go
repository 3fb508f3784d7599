package engine

import (
	"testing"
	"time"
)

func at(h, m, s int) time.Time {
	return time.Date(2025, 7, 8, h, m, s, 0, time.UTC)
}

func span(h1, m1, h2, m2 int) Interval {
	return Interval{Join: at(h1, m1, 0), Leave: at(h2, m2, 0)}
}

func TestGapAbsenceFewIntervals(t *testing.T) {
	tolerance := DefaultRules().ReconnectTolerance
	if got := GapAbsence(nil, tolerance); got != 0 {
		t.Fatalf("expected 0 for empty list, got %d", got)
	}
	if got := GapAbsence([]Interval{span(9, 0, 12, 0)}, tolerance); got != 0 {
		t.Fatalf("expected 0 for single interval, got %d", got)
	}
}

func TestGapAbsenceToleranceBoundary(t *testing.T) {
	tolerance := DefaultRules().ReconnectTolerance

	// Exactly 90 seconds is reconnection noise.
	atLimit := []Interval{
		span(9, 0, 9, 10),
		{Join: at(9, 11, 30), Leave: at(9, 20, 0)},
	}
	if got := GapAbsence(atLimit, tolerance); got != 0 {
		t.Fatalf("expected 90s gap to be ignored, got %d", got)
	}

	// One second over counts in full, rounded.
	overLimit := []Interval{
		span(9, 0, 9, 10),
		{Join: at(9, 11, 31), Leave: at(9, 20, 0)},
	}
	if got := GapAbsence(overLimit, tolerance); got != 2 {
		t.Fatalf("expected 91s gap to round to 2 minutes, got %d", got)
	}
}

func TestGapAbsenceRoundsSumNotPerGap(t *testing.T) {
	tolerance := DefaultRules().ReconnectTolerance
	// Two 96-second gaps: 3.2 minutes total rounds to 3. Rounding each gap
	// separately would give 4.
	intervals := []Interval{
		span(9, 0, 9, 10),
		{Join: at(9, 11, 36), Leave: at(9, 20, 0)},
		{Join: at(9, 21, 36), Leave: at(9, 30, 0)},
	}
	if got := GapAbsence(intervals, tolerance); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestGapAbsenceMorningScenario(t *testing.T) {
	tolerance := DefaultRules().ReconnectTolerance
	intervals := []Interval{
		span(9, 5, 9, 50),
		{Join: at(9, 56, 0), Leave: at(12, 10, 0)},
	}
	if got := GapAbsence(intervals, tolerance); got != 6 {
		t.Fatalf("expected 6 minutes, got %d", got)
	}
}

func TestGapAbsenceOverlapIsZeroGap(t *testing.T) {
	tolerance := DefaultRules().ReconnectTolerance
	intervals := []Interval{
		span(9, 0, 10, 0),
		span(9, 30, 10, 30),
	}
	if got := GapAbsence(intervals, tolerance); got != 0 {
		t.Fatalf("expected overlapping intervals to contribute nothing, got %d", got)
	}
}
