package engine

import (
	"fmt"
	"strings"
	"time"
)

// Output literals expected by the Italian attendance document template.
const (
	AbsentMarker  = "ASSENTE"
	noConnections = "Nessuna connessione"
)

const clockFormat = "15:04:05"

// ConnectionsSummary renders interval lists as a human-readable audit
// string, morning before afternoon. This is the frozen form stored on alias
// records.
func ConnectionsSummary(morning, afternoon []Interval) string {
	spans := make([]string, 0, len(morning)+len(afternoon))
	for _, iv := range append(cloneIntervals(morning), afternoon...) {
		spans = append(spans, iv.Join.Format(clockFormat)+" - "+iv.Leave.Format(clockFormat))
	}
	if len(spans) == 0 {
		return noConnections
	}
	return strings.Join(spans, "; ")
}

// FormatConnections renders a participant's connection log for the scope,
// with one trailing line per merged alias.
func FormatConnections(p Participant, scope Scope) string {
	var windows []string
	if scope.IncludesMorning() && len(p.Morning) > 0 {
		windows = append(windows, joinSpans(p.Morning))
	}
	if scope.IncludesAfternoon() && len(p.Afternoon) > 0 {
		windows = append(windows, joinSpans(p.Afternoon))
	}
	var lines []string
	if len(windows) > 0 {
		lines = append(lines, p.Name+": "+strings.Join(windows, " | "))
	}
	for _, a := range p.Aliases {
		if a.Connections != "" && a.Connections != noConnections {
			lines = append(lines, a.Name+": "+a.Connections)
		}
	}
	if len(lines) == 0 {
		return noConnections
	}
	return strings.Join(lines, " || ")
}

func joinSpans(ivs []Interval) string {
	spans := make([]string, len(ivs))
	for i, iv := range ivs {
		spans[i] = iv.Join.Format(clockFormat) + "-" + iv.Leave.Format(clockFormat)
	}
	return strings.Join(spans, "; ")
}

// ScheduleText renders the overall day schedule, e.g.
// "09:00 - 12:00 / 14:00 - 17:00". Each covered window starts at its
// earliest derived hour and ends at the latest observed leave rounded to
// the nearest hour, clamped away from the break hour for the morning.
func ScheduleText(r Roster, scope Scope, hours []int, rules Rules) string {
	var morningHours, afternoonHours []int
	for _, h := range hours {
		if h >= rules.MorningStartHour && h <= rules.BreakHour {
			morningHours = append(morningHours, h)
		} else if h >= rules.AfternoonStartHour && h <= rules.AfternoonEndHour {
			afternoonHours = append(afternoonHours, h)
		}
	}

	var parts []string
	if len(morningHours) > 0 {
		start := morningHours[0]
		end := windowEndHour(r, WindowMorning, rules)
		parts = append(parts, fmt.Sprintf("%02d:00 - %02d:00", start, end))
	}
	if len(afternoonHours) > 0 {
		start := afternoonHours[0]
		end := windowEndHour(r, WindowAfternoon, rules)
		parts = append(parts, fmt.Sprintf("%02d:00 - %02d:00", start, end))
	}
	return strings.Join(parts, " / ")
}

// windowEndHour finds the latest observed leave in the window across the
// whole meeting, rounded to the nearest hour. Without any data it falls
// back to the window's default end. The result never drops below the
// window's start hour, and a morning that rounds into the break hour is
// pulled back to the hour before it.
func windowEndHour(r Roster, w Window, rules Rules) int {
	var latest time.Time
	for _, p := range r.everyone() {
		if leave, ok := p.LastLeave(w); ok && leave.After(latest) {
			latest = leave
		}
	}
	if latest.IsZero() {
		if w == WindowMorning {
			return rules.BreakHour - 1
		}
		return rules.AfternoonEndHour
	}
	end := roundToNearestHour(latest)
	floor := rules.MorningStartHour
	if w == WindowAfternoon {
		floor = rules.AfternoonStartHour
	}
	if end < floor {
		end = floor
	}
	if w == WindowMorning && end == rules.BreakHour {
		end = rules.BreakHour - 1
	}
	return end
}

func roundToNearestHour(t time.Time) int {
	h := t.Hour()
	if t.Minute() >= 30 {
		h++
	}
	return h
}
