package engine

import (
	"math"
	"time"
)

// GapAbsence sums the gaps between consecutive intervals of one window that
// exceed the reconnection tolerance, in minutes. Fractional gaps accumulate
// and the total is rounded once at the end, never per gap. Zero or one
// interval means zero gap-absence; whether the window was attended at all
// is judged by the classifier, not here.
func GapAbsence(intervals []Interval, tolerance time.Duration) int {
	if len(intervals) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i+1 < len(intervals); i++ {
		gap := intervals[i+1].Join.Sub(intervals[i].Leave)
		if gap > tolerance {
			total += gap.Minutes()
		}
	}
	return int(math.Round(total))
}

// totalGapAbsence is the day-wide gap absence across both windows. An empty
// window contributes zero regardless of scope; full absence is handled by
// the classifier with the sentinel.
func totalGapAbsence(p Participant, tolerance time.Duration) int {
	return GapAbsence(p.Morning, tolerance) + GapAbsence(p.Afternoon, tolerance)
}
