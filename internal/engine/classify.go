package engine

import (
	"strings"

	"github.com/google/uuid"
)

// Classify recomputes absence minutes and presence for one participant.
// Precedence: a manual absent mark always wins; a participant with no
// sessions in either window gets the full-absence sentinel; otherwise
// presence follows the cumulative gap tolerance.
func Classify(p Participant, rules Rules) Participant {
	switch {
	case !p.HasSessions():
		p.AbsenceMinutes = FullAbsence
		p.Present = false
	default:
		p.AbsenceMinutes = totalGapAbsence(p, rules.ReconnectTolerance)
		p.Present = p.AbsenceMinutes <= rules.MaxAbsenceMinutes
	}
	if p.MarkedAbsent {
		p.Present = false
	}
	return p
}

// ClassifyAll classifies every timeline in the roster, organizer included.
func ClassifyAll(r Roster, rules Rules) Roster {
	out := r.clone()
	for i, p := range out.Participants {
		out.Participants[i] = Classify(p, rules)
	}
	if out.Organizer != nil {
		org := Classify(*out.Organizer, rules)
		out.Organizer = &org
	}
	return out
}

// TogglePresence flips a participant's presence by explicit operator
// action. Forcing presence zeroes the absence minutes as a consistency
// fiction; forcing absence sets the sentinel and the manual mark. Both
// directions are deliberate, auditable overrides, not recomputations.
func TogglePresence(r Roster, id uuid.UUID) (Roster, error) {
	i := r.indexOf(id)
	if i < 0 {
		return Roster{}, ErrParticipantNotFound
	}
	out := r.clone()
	p := &out.Participants[i]
	if p.Present {
		p.Present = false
		p.MarkedAbsent = true
		p.AbsenceMinutes = FullAbsence
	} else {
		p.Present = true
		p.MarkedAbsent = false
		p.AbsenceMinutes = 0
	}
	return out, nil
}

// AddManual appends an operator-entered participant with no log data. It is
// marked absent until toggled and takes part in ordering, merging, and the
// report slots exactly like a log-derived entry.
func AddManual(r Roster, name string) (Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Roster{}, ErrMissingName
	}
	out := r.clone()
	out.Participants = append(out.Participants, Participant{
		ID:             uuid.New(),
		Name:           name,
		AbsenceMinutes: FullAbsence,
		Present:        false,
		MarkedAbsent:   true,
	})
	return out, nil
}

// Remove drops a participant from the roster.
func Remove(r Roster, id uuid.UUID) (Roster, error) {
	i := r.indexOf(id)
	if i < 0 {
		return Roster{}, ErrParticipantNotFound
	}
	out := r.clone()
	out.Participants = append(out.Participants[:i], out.Participants[i+1:]...)
	return out, nil
}

// Move places a participant at the given position, shifting the rest. The
// position is clamped to the list bounds. Ordering decides which entries
// occupy the capped document slots.
func Move(r Roster, id uuid.UUID, position int) (Roster, error) {
	i := r.indexOf(id)
	if i < 0 {
		return Roster{}, ErrParticipantNotFound
	}
	out := r.clone()
	if position < 0 {
		position = 0
	}
	if position > len(out.Participants)-1 {
		position = len(out.Participants) - 1
	}
	p := out.Participants[i]
	out.Participants = append(out.Participants[:i], out.Participants[i+1:]...)
	rest := append([]Participant{}, out.Participants[position:]...)
	out.Participants = append(out.Participants[:position], p)
	out.Participants = append(out.Participants, rest...)
	return out, nil
}
