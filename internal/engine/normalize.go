package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawEvent is one parsed log record handed in by the upload adapter. The
// window it belongs to is decided by the caller, not inferred from the
// times.
type RawEvent struct {
	Name          string
	Email         string
	Join          time.Time
	Leave         time.Time
	OrganizerHint bool
}

func (e RawEvent) malformed() bool {
	return strings.TrimSpace(e.Name) == "" || e.Join.IsZero() || e.Leave.IsZero() || e.Leave.Before(e.Join)
}

// NormalizeResult carries the roster plus per-record anomalies that were
// absorbed rather than surfaced as errors.
type NormalizeResult struct {
	Roster   Roster
	Skipped  int
	Overlaps int
}

// Normalize folds raw events from both windows into one timeline per
// display name. Names are keyed case-insensitively; the first-seen casing
// becomes canonical. The first event carrying the organizer hint designates
// the organizer for the whole run, later hints are ignored. Malformed
// events are skipped, not fatal.
func Normalize(morning, afternoon []RawEvent) NormalizeResult {
	var res NormalizeResult
	byKey := make(map[string]*Participant)
	var order []string
	organizerSeen := false

	consume := func(events []RawEvent, w Window) {
		for _, ev := range events {
			if ev.malformed() {
				res.Skipped++
				continue
			}
			name := strings.TrimSpace(ev.Name)
			key := strings.ToLower(name)
			p, ok := byKey[key]
			if !ok {
				p = &Participant{
					ID:    uuid.New(),
					Name:  name,
					Email: ev.Email,
				}
				byKey[key] = p
				order = append(order, key)
			}
			if ev.OrganizerHint && !organizerSeen {
				p.Organizer = true
				organizerSeen = true
			}
			iv := Interval{Join: ev.Join, Leave: ev.Leave}
			if w == WindowAfternoon {
				p.Afternoon = append(p.Afternoon, iv)
			} else {
				p.Morning = append(p.Morning, iv)
			}
		}
	}
	consume(morning, WindowMorning)
	consume(afternoon, WindowAfternoon)

	participants := make([]Participant, 0, len(order))
	for _, key := range order {
		p := byKey[key]
		sortIntervals(p.Morning)
		sortIntervals(p.Afternoon)
		res.Overlaps += countOverlaps(p.Morning) + countOverlaps(p.Afternoon)
		if p.Organizer {
			org := *p
			res.Roster.Organizer = &org
			continue
		}
		participants = append(participants, *p)
	}
	sort.Slice(participants, func(i, j int) bool {
		return strings.ToLower(participants[i].Name) < strings.ToLower(participants[j].Name)
	})
	res.Roster.Participants = participants
	return res
}

// BuildRoster normalizes raw events and runs the full attendance pipeline
// for the given scope. It fails with EmptyRosterError when a window the
// scope requires yielded nobody.
func BuildRoster(scope Scope, morning, afternoon []RawEvent, rules Rules) (NormalizeResult, error) {
	res := Normalize(morning, afternoon)
	if scope.IncludesMorning() && !windowPopulated(res.Roster, WindowMorning) {
		return NormalizeResult{}, &EmptyRosterError{Window: WindowMorning}
	}
	if scope.IncludesAfternoon() && !windowPopulated(res.Roster, WindowAfternoon) {
		return NormalizeResult{}, &EmptyRosterError{Window: WindowAfternoon}
	}
	res.Roster = ClassifyAll(res.Roster, rules)
	return res, nil
}

func windowPopulated(r Roster, w Window) bool {
	for _, p := range r.everyone() {
		if len(p.Intervals(w)) > 0 {
			return true
		}
	}
	return false
}
