package engine

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestClassifyNoSessionsGetsSentinel(t *testing.T) {
	p := Classify(Participant{Name: "Fantasma"}, DefaultRules())
	if p.AbsenceMinutes != FullAbsence {
		t.Fatalf("expected sentinel %d, got %d", FullAbsence, p.AbsenceMinutes)
	}
	if p.Present {
		t.Fatalf("expected absent with no sessions")
	}
}

func TestClassifyAbsenceToleranceBoundary(t *testing.T) {
	rules := DefaultRules()

	// 15-minute gap keeps the participant present, 16 flips them.
	atLimit := Participant{Name: "Anna", Morning: []Interval{
		span(9, 0, 9, 10),
		span(9, 25, 12, 0),
	}}
	if p := Classify(atLimit, rules); !p.Present || p.AbsenceMinutes != 15 {
		t.Fatalf("expected present with 15 minutes, got present=%v minutes=%d", p.Present, p.AbsenceMinutes)
	}

	overLimit := Participant{Name: "Anna", Morning: []Interval{
		span(9, 0, 9, 10),
		span(9, 26, 12, 0),
	}}
	if p := Classify(overLimit, rules); p.Present || p.AbsenceMinutes != 16 {
		t.Fatalf("expected absent with 16 minutes, got present=%v minutes=%d", p.Present, p.AbsenceMinutes)
	}
}

func TestClassifyManualMarkAlwaysWins(t *testing.T) {
	p := Participant{
		Name:         "Anna",
		Morning:      []Interval{span(9, 0, 12, 0)},
		MarkedAbsent: true,
	}
	if got := Classify(p, DefaultRules()); got.Present {
		t.Fatalf("manual absent mark must force absence regardless of windows")
	}
}

func TestTogglePresence(t *testing.T) {
	r := rosterOf(Classify(Participant{
		ID:      uuid.New(),
		Name:    "Anna",
		Morning: []Interval{span(9, 0, 12, 0)},
	}, DefaultRules()))
	id := r.Participants[0].ID

	toggled, err := TogglePresence(r, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := toggled.Participants[0]
	if p.Present || !p.MarkedAbsent || p.AbsenceMinutes != FullAbsence {
		t.Fatalf("toggle to absent should set the sentinel and the manual mark, got %+v", p)
	}
	if r.Participants[0].Present != true {
		t.Fatalf("toggle mutated the input snapshot")
	}

	back, err := TogglePresence(toggled, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p = back.Participants[0]
	if !p.Present || p.MarkedAbsent || p.AbsenceMinutes != 0 {
		t.Fatalf("toggle to present should zero the absence, got %+v", p)
	}
}

func TestTogglePresenceUnknownID(t *testing.T) {
	r := rosterOf(Participant{ID: uuid.New(), Name: "Anna"})
	if _, err := TogglePresence(r, uuid.New()); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func TestAddManual(t *testing.T) {
	r := rosterOf(Participant{ID: uuid.New(), Name: "Anna"})

	added, err := AddManual(r, "  Bruno Neri ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(added.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(added.Participants))
	}
	p := added.Participants[1]
	if p.Name != "Bruno Neri" || !p.MarkedAbsent || p.Present || p.AbsenceMinutes != FullAbsence {
		t.Fatalf("unexpected manual participant %+v", p)
	}
	if p.ID == (uuid.UUID{}) {
		t.Fatalf("manual participant needs a stable identifier")
	}

	if _, err := AddManual(r, "   "); !errors.Is(err, ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
}

func TestRemoveAndMove(t *testing.T) {
	a := Participant{ID: uuid.New(), Name: "A"}
	b := Participant{ID: uuid.New(), Name: "B"}
	c := Participant{ID: uuid.New(), Name: "C"}
	r := rosterOf(a, b, c)

	moved, err := Move(r, c.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.Participants[0].Name != "C" || moved.Participants[1].Name != "A" {
		t.Fatalf("unexpected order after move: %v", names(moved))
	}

	clamped, err := Move(r, a.ID, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clamped.Participants[2].Name != "A" {
		t.Fatalf("expected out-of-range position clamped to the end, got %v", names(clamped))
	}

	removed, err := Remove(r, b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(removed.Participants) != 2 || removed.Participants[1].Name != "C" {
		t.Fatalf("unexpected roster after remove: %v", names(removed))
	}
	if len(r.Participants) != 3 {
		t.Fatalf("remove mutated the input snapshot")
	}

	if _, err := Remove(r, uuid.New()); !errors.Is(err, ErrParticipantNotFound) {
		t.Fatalf("expected ErrParticipantNotFound, got %v", err)
	}
}

func names(r Roster) []string {
	out := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		out[i] = p.Name
	}
	return out
}

func TestStatsCountOrganizer(t *testing.T) {
	org := Participant{ID: uuid.New(), Name: "Prof", Organizer: true}
	r := Roster{
		Participants: []Participant{
			{ID: uuid.New(), Name: "A", Present: true},
			{ID: uuid.New(), Name: "B"},
		},
		Organizer: &org,
	}
	s := r.Stats()
	if s.Total != 3 || s.Present != 2 || s.Absent != 1 {
		t.Fatalf("unexpected stats %+v", s)
	}
}
