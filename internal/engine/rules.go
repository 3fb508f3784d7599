package engine

import "time"

// Rules holds the attendance thresholds. The three minute thresholds are
// deliberately independent: candidacy asks whether an hour was taught at
// all, dwell asks whether one person attended enough of it, and the absence
// tolerance judges the whole day.
type Rules struct {
	// ReconnectTolerance is the largest gap between two sessions still
	// treated as reconnection noise. Gaps must be strictly longer to count
	// as absence.
	ReconnectTolerance time.Duration

	// MaxAbsenceMinutes is the cumulative gap budget before a participant
	// flips to absent.
	MaxAbsenceMinutes int

	// HourCandidacyMinutes is the minimum collective overlap for a clock
	// hour to count as taught.
	HourCandidacyMinutes int

	// HourDwellMinutes is the minimum individual overlap for a participant
	// to be present during a derived hour.
	HourDwellMinutes int

	// BreakHour is excluded from derived lesson hours unconditionally.
	BreakHour int

	// Hour-candidacy search ranges per window. The morning ceiling sits
	// below the break hour on purpose.
	MorningStartHour   int
	MorningEndHour     int
	AfternoonStartHour int
	AfternoonEndHour   int
}

func DefaultRules() Rules {
	return Rules{
		ReconnectTolerance:   90 * time.Second,
		MaxAbsenceMinutes:    15,
		HourCandidacyMinutes: 15,
		HourDwellMinutes:     30,
		BreakHour:            13,
		MorningStartHour:     9,
		MorningEndHour:       12,
		AfternoonStartHour:   14,
		AfternoonEndHour:     18,
	}
}

func (r Rules) windowFor(hour int) (Window, bool) {
	switch {
	case hour >= r.MorningStartHour && hour <= r.MorningEndHour:
		return WindowMorning, true
	case hour >= r.AfternoonStartHour && hour <= r.AfternoonEndHour:
		return WindowAfternoon, true
	}
	return "", false
}
