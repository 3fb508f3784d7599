package engine

import (
	"sort"
	"time"
)

// Window is one of the two daily session periods.
type Window string

const (
	WindowMorning   Window = "morning"
	WindowAfternoon Window = "afternoon"
)

// Scope selects which windows a lesson covers.
type Scope string

const (
	ScopeMorning   Scope = "morning"
	ScopeAfternoon Scope = "afternoon"
	ScopeBoth      Scope = "both"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeMorning, ScopeAfternoon, ScopeBoth:
		return true
	}
	return false
}

func (s Scope) IncludesMorning() bool   { return s != ScopeAfternoon }
func (s Scope) IncludesAfternoon() bool { return s != ScopeMorning }

// Interval is one continuous join-to-leave span. Leave is never before Join
// in a well-formed interval; normalization drops records that violate this.
type Interval struct {
	Join  time.Time `json:"join"`
	Leave time.Time `json:"leave"`
}

// hourOverlapMinutes returns how many minutes of iv fall inside the clock
// hour [h:00:00, h:59:59.999] of the interval's own join date. Anchoring on
// the join date keeps cross-midnight leave times from bleeding into the next
// day's hours.
func hourOverlapMinutes(iv Interval, hour int) float64 {
	y, m, d := iv.Join.Date()
	hourStart := time.Date(y, m, d, hour, 0, 0, 0, iv.Join.Location())
	hourEnd := hourStart.Add(time.Hour - time.Millisecond)

	start := iv.Join
	if hourStart.After(start) {
		start = hourStart
	}
	end := iv.Leave
	if hourEnd.Before(end) {
		end = hourEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Minutes()
}

func sortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Join.Equal(ivs[j].Join) {
			return ivs[i].Leave.Before(ivs[j].Leave)
		}
		return ivs[i].Join.Before(ivs[j].Join)
	})
}

func cloneIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	out := make([]Interval, len(ivs))
	copy(out, ivs)
	return out
}

// countOverlaps reports how many consecutive pairs in a sorted list overlap
// rather than gap. Overlap is tolerated (treated as zero gap) but worth
// surfacing to the operator.
func countOverlaps(ivs []Interval) int {
	overlaps := 0
	for i := 0; i+1 < len(ivs); i++ {
		if ivs[i+1].Join.Before(ivs[i].Leave) {
			overlaps++
		}
	}
	return overlaps
}
