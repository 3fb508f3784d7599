package engine

import "sort"

// DeriveHours determines which clock hours were actually taught, judged by
// collective observed activity: an hour qualifies once any interval of any
// participant (organizer included) overlaps it by the candidacy threshold.
// The break hour is removed unconditionally. When no hour qualifies the
// static default schedule for the scope is returned with estimated=true;
// that fallback is policy, not an error, but callers must surface it so
// operators know the schedule is a guess.
func DeriveHours(r Roster, scope Scope, rules Rules) (hours []int, estimated bool) {
	seen := make(map[int]bool)

	scan := func(ivs []Interval, startHour, endHour int) {
		for _, iv := range ivs {
			for h := startHour; h <= endHour; h++ {
				if seen[h] {
					continue
				}
				if hourOverlapMinutes(iv, h) >= float64(rules.HourCandidacyMinutes) {
					seen[h] = true
				}
			}
		}
	}

	for _, p := range r.everyone() {
		if scope.IncludesMorning() {
			scan(p.Morning, rules.MorningStartHour, rules.MorningEndHour)
		}
		if scope.IncludesAfternoon() {
			scan(p.Afternoon, rules.AfternoonStartHour, rules.AfternoonEndHour)
		}
	}

	delete(seen, rules.BreakHour)
	for h := range seen {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	if len(hours) == 0 {
		return defaultHours(scope, rules), true
	}
	return hours, false
}

func defaultHours(scope Scope, rules Rules) []int {
	var hours []int
	if scope.IncludesMorning() {
		for h := rules.MorningStartHour; h <= rules.MorningEndHour; h++ {
			if h != rules.BreakHour {
				hours = append(hours, h)
			}
		}
	}
	if scope.IncludesAfternoon() {
		for h := rules.AfternoonStartHour; h < rules.AfternoonEndHour; h++ {
			hours = append(hours, h)
		}
	}
	return hours
}
