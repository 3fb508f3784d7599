package engine

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestBuildReportPresentAndAbsentRows(t *testing.T) {
	rules := DefaultRules()
	present := Classify(Participant{
		ID:        uuid.New(),
		Name:      "Anna Verdi",
		Morning:   []Interval{span(9, 0, 10, 0), span(10, 3, 12, 0)},
		Afternoon: []Interval{span(14, 0, 17, 0)},
	}, rules)
	absent := Classify(Participant{ID: uuid.New(), Name: "Bruno Neri"}, rules)

	rep := BuildReport(rosterOf(present, absent), ScopeBoth, rules)

	if len(rep.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(rep.Slots))
	}

	anna := rep.Slots[0]
	if anna.MorningIn != "09:00:00 - 10:03:00" {
		t.Fatalf("unexpected morning joins %q", anna.MorningIn)
	}
	if anna.MorningOut != "10:00:00 - 12:00:00" {
		t.Fatalf("unexpected morning leaves %q", anna.MorningOut)
	}
	if anna.AfternoonIn != "14:00:00" || anna.AfternoonOut != "17:00:00" {
		t.Fatalf("unexpected afternoon times %q / %q", anna.AfternoonIn, anna.AfternoonOut)
	}
	if anna.Presence == AbsentMarker || anna.Presence == "" {
		t.Fatalf("present row needs a connection log, got %q", anna.Presence)
	}

	bruno := rep.Slots[1]
	for _, field := range []string{bruno.MorningIn, bruno.MorningOut, bruno.AfternoonIn, bruno.AfternoonOut, bruno.Presence} {
		if field != AbsentMarker {
			t.Fatalf("absent row must carry the marker in every field, got %+v", bruno)
		}
	}

	if rep.Stats.Total != 2 || rep.Stats.Present != 1 {
		t.Fatalf("unexpected stats %+v", rep.Stats)
	}
}

func TestBuildReportAbsentMarkersFollowScope(t *testing.T) {
	rules := DefaultRules()
	absent := Classify(Participant{ID: uuid.New(), Name: "Bruno Neri"}, rules)
	morning := Classify(Participant{
		ID:      uuid.New(),
		Name:    "Anna",
		Morning: []Interval{span(9, 0, 12, 0)},
	}, rules)

	rep := BuildReport(rosterOf(morning, absent), ScopeMorning, rules)
	slot := rep.Slots[1]
	if slot.MorningIn != AbsentMarker {
		t.Fatalf("expected marker in covered window, got %q", slot.MorningIn)
	}
	if slot.AfternoonIn != "" {
		t.Fatalf("uncovered window must stay blank, got %q", slot.AfternoonIn)
	}
}

func TestBuildReportCapsSlots(t *testing.T) {
	rules := DefaultRules()
	var participants []Participant
	for i := 0; i < ReportSlots+3; i++ {
		participants = append(participants, Classify(Participant{
			ID:      uuid.New(),
			Name:    fmt.Sprintf("Studente %d", i),
			Morning: []Interval{span(9, 0, 12, 0)},
		}, rules))
	}

	rep := BuildReport(rosterOf(participants...), ScopeMorning, rules)
	if len(rep.Slots) != ReportSlots {
		t.Fatalf("expected %d slots, got %d", ReportSlots, len(rep.Slots))
	}
	if rep.Slots[0].Name != "Studente 0" {
		t.Fatalf("slot order must follow roster order, got %q first", rep.Slots[0].Name)
	}
	if rep.Stats.Total != ReportSlots+3 {
		t.Fatalf("stats must cover the whole roster, got %+v", rep.Stats)
	}
}

func TestBuildReportOrganizerNeverTakesSlot(t *testing.T) {
	rules := DefaultRules()
	org := Classify(Participant{
		ID:        uuid.New(),
		Name:      "Prof. Bianchi",
		Organizer: true,
		Morning:   []Interval{span(8, 50, 12, 5)},
	}, rules)
	student := Classify(Participant{
		ID:      uuid.New(),
		Name:    "Anna",
		Morning: []Interval{span(9, 0, 12, 0)},
	}, rules)

	r := Roster{Participants: []Participant{student}, Organizer: &org}
	rep := BuildReport(r, ScopeMorning, rules)

	if len(rep.Slots) != 1 || rep.Slots[0].Name != "Anna" {
		t.Fatalf("organizer must not occupy a slot, got %+v", rep.Slots)
	}
	if rep.ScheduleEstimated {
		t.Fatalf("organizer activity should still drive hour derivation")
	}
	if rep.Stats.Total != 2 {
		t.Fatalf("organizer counts toward totals, got %+v", rep.Stats)
	}
}

func TestBuildReportEstimatedScheduleFlag(t *testing.T) {
	rules := DefaultRules()
	absent := Classify(Participant{ID: uuid.New(), Name: "Bruno"}, rules)
	rep := BuildReport(rosterOf(absent), ScopeMorning, rules)
	if !rep.ScheduleEstimated {
		t.Fatalf("no measurable activity must flag the schedule as estimated")
	}
	if rep.Schedule != "09:00 - 12:00" {
		t.Fatalf("unexpected fallback schedule %q", rep.Schedule)
	}
}
