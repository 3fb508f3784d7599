package engine

import "strings"

// ReportSlots is the fixed number of participant rows in the output
// document. The cap is template policy; the engine itself handles rosters
// of any size and the organizer never occupies a slot.
const ReportSlots = 5

// ReportSlot is one render-ready participant row.
type ReportSlot struct {
	Name         string `json:"name"`
	MorningIn    string `json:"morningIn"`
	MorningOut   string `json:"morningOut"`
	AfternoonIn  string `json:"afternoonIn"`
	AfternoonOut string `json:"afternoonOut"`
	Presence     string `json:"presence"`
	Present      bool   `json:"present"`
}

// Report is the full payload handed to the document rendering adapter.
type Report struct {
	Schedule          string       `json:"schedule"`
	LessonHours       []int        `json:"lessonHours"`
	ScheduleEstimated bool         `json:"scheduleEstimated"`
	Slots             []ReportSlot `json:"slots"`
	Stats             Stats        `json:"stats"`
}

// BuildReport derives the document payload from a roster snapshot. Absent
// participants get the literal absence marker in every time field the scope
// covers; present ones get all their connection times with seconds
// precision.
func BuildReport(r Roster, scope Scope, rules Rules) Report {
	hours, estimated := DeriveHours(r, scope, rules)
	rep := Report{
		Schedule:          ScheduleText(r, scope, hours, rules),
		LessonHours:       hours,
		ScheduleEstimated: estimated,
		Stats:             r.Stats(),
	}

	n := len(r.Participants)
	if n > ReportSlots {
		n = ReportSlots
	}
	for _, p := range r.Participants[:n] {
		slot := ReportSlot{Name: p.Name, Present: p.Present}
		if !p.Present {
			if scope.IncludesMorning() {
				slot.MorningIn = AbsentMarker
				slot.MorningOut = AbsentMarker
			}
			if scope.IncludesAfternoon() {
				slot.AfternoonIn = AbsentMarker
				slot.AfternoonOut = AbsentMarker
			}
			slot.Presence = AbsentMarker
		} else {
			if scope.IncludesMorning() && len(p.Morning) > 0 {
				slot.MorningIn = joinTimes(p.Morning, true)
				slot.MorningOut = joinTimes(p.Morning, false)
			}
			if scope.IncludesAfternoon() && len(p.Afternoon) > 0 {
				slot.AfternoonIn = joinTimes(p.Afternoon, true)
				slot.AfternoonOut = joinTimes(p.Afternoon, false)
			}
			slot.Presence = FormatConnections(p, scope)
		}
		rep.Slots = append(rep.Slots, slot)
	}
	return rep
}

func joinTimes(ivs []Interval, joins bool) string {
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		if joins {
			parts[i] = iv.Join.Format(clockFormat)
		} else {
			parts[i] = iv.Leave.Format(clockFormat)
		}
	}
	return strings.Join(parts, " - ")
}
