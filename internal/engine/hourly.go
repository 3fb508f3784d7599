package engine

import "math"

// HourPresent decides presence for one derived hour using the dwell rule:
// the participant must accumulate at least the dwell threshold of overlap
// with that clock hour, across all sessions in the matching window. A
// participant with no sessions at all is absent for every hour by
// definition.
func HourPresent(p Participant, hour int, rules Rules) bool {
	if !p.HasSessions() {
		return false
	}
	w, ok := rules.windowFor(hour)
	if !ok {
		return false
	}
	total := 0.0
	for _, iv := range p.Intervals(w) {
		total += hourOverlapMinutes(iv, hour)
	}
	return total >= float64(rules.HourDwellMinutes)
}

// HourMark is one cell of the hourly attendance grid.
type HourMark struct {
	Hour    int  `json:"hour"`
	Present bool `json:"present"`
}

// HourlyGrid evaluates a participant against every derived lesson hour.
func HourlyGrid(p Participant, hours []int, rules Rules) []HourMark {
	grid := make([]HourMark, len(hours))
	for i, h := range hours {
		grid[i] = HourMark{Hour: h, Present: HourPresent(p, h, rules)}
	}
	return grid
}

// AttendancePercent is the share of derived lesson hours the participant
// attended, rounded to the nearest whole percent.
func AttendancePercent(p Participant, hours []int, rules Rules) int {
	if len(hours) == 0 {
		return 0
	}
	present := 0
	for _, h := range hours {
		if HourPresent(p, h, rules) {
			present++
		}
	}
	return int(math.Round(float64(present) / float64(len(hours)) * 100))
}
