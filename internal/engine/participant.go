package engine

import (
	"time"

	"github.com/google/uuid"
)

// FullAbsence is the sentinel absence value meaning "no measurable
// attendance data", distinct from a large but real absence duration.
const FullAbsence = 999

// Alias is a frozen audit record of an identity merged into another
// timeline. The connection summary is rendered at merge time and never
// recomputed.
type Alias struct {
	Name        string `json:"name"`
	Connections string `json:"connections"`
}

// Participant is one distinct identity for one lesson day. Interval lists
// are kept sorted ascending by join time; first-join/last-leave are derived
// on demand rather than cached so a snapshot can never go stale.
type Participant struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Organizer      bool       `json:"organizer"`
	Morning        []Interval `json:"morning"`
	Afternoon      []Interval `json:"afternoon"`
	AbsenceMinutes int        `json:"absenceMinutes"`
	Present        bool       `json:"present"`
	MarkedAbsent   bool       `json:"markedAbsent"`
	Aliases        []Alias    `json:"aliases,omitempty"`
}

func (p Participant) Intervals(w Window) []Interval {
	if w == WindowAfternoon {
		return p.Afternoon
	}
	return p.Morning
}

// FirstJoin returns the earliest join time in the window, if any.
func (p Participant) FirstJoin(w Window) (time.Time, bool) {
	ivs := p.Intervals(w)
	if len(ivs) == 0 {
		return time.Time{}, false
	}
	return ivs[0].Join, true
}

// LastLeave returns the latest leave time in the window, if any. The lists
// are sorted by join time, so the last leave must be scanned for.
func (p Participant) LastLeave(w Window) (time.Time, bool) {
	ivs := p.Intervals(w)
	if len(ivs) == 0 {
		return time.Time{}, false
	}
	last := ivs[0].Leave
	for _, iv := range ivs[1:] {
		if iv.Leave.After(last) {
			last = iv.Leave
		}
	}
	return last, true
}

// HasSessions reports whether the participant appears in either window.
func (p Participant) HasSessions() bool {
	return len(p.Morning) > 0 || len(p.Afternoon) > 0
}

func (p Participant) clone() Participant {
	out := p
	out.Morning = cloneIntervals(p.Morning)
	out.Afternoon = cloneIntervals(p.Afternoon)
	if len(p.Aliases) > 0 {
		out.Aliases = make([]Alias, len(p.Aliases))
		copy(out.Aliases, p.Aliases)
	}
	return out
}

// Roster is an immutable snapshot of one lesson day. Mutating operations
// return a new roster and leave the receiver untouched; callers hold a
// reference to the current snapshot only.
type Roster struct {
	Participants []Participant `json:"participants"`
	Organizer    *Participant  `json:"organizer,omitempty"`
}

func (r Roster) clone() Roster {
	out := Roster{}
	if len(r.Participants) > 0 {
		out.Participants = make([]Participant, len(r.Participants))
		for i, p := range r.Participants {
			out.Participants[i] = p.clone()
		}
	}
	if r.Organizer != nil {
		org := r.Organizer.clone()
		out.Organizer = &org
	}
	return out
}

// everyone returns participants plus the organizer, for computations that
// span the whole meeting (hour derivation, schedule text).
func (r Roster) everyone() []Participant {
	if r.Organizer == nil {
		return r.Participants
	}
	all := make([]Participant, 0, len(r.Participants)+1)
	all = append(all, r.Participants...)
	all = append(all, *r.Organizer)
	return all
}

func (r Roster) indexOf(id uuid.UUID) int {
	for i, p := range r.Participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the participant with the given ID, organizer included.
func (r Roster) Find(id uuid.UUID) (Participant, bool) {
	if i := r.indexOf(id); i >= 0 {
		return r.Participants[i], true
	}
	if r.Organizer != nil && r.Organizer.ID == id {
		return *r.Organizer, true
	}
	return Participant{}, false
}

// Stats summarizes presence across the roster. The organizer counts toward
// the totals and is always present by definition.
type Stats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

func (r Roster) Stats() Stats {
	s := Stats{Total: len(r.Participants)}
	for _, p := range r.Participants {
		if p.Present {
			s.Present++
		} else {
			s.Absent++
		}
	}
	if r.Organizer != nil {
		s.Total++
		s.Present++
	}
	return s
}
