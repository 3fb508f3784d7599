package engine

import (
	"errors"
	"fmt"
)

// ErrParticipantNotFound is returned when an operation addresses a
// participant ID that is not in the roster snapshot, typically a stale
// selection carried over from a previous snapshot.
var ErrParticipantNotFound = errors.New("participant not found")

// ErrMissingName is returned when a manual participant has a blank name.
var ErrMissingName = errors.New("missing participant name")

// InvalidMergeError rejects a merge before any state changes.
type InvalidMergeError struct {
	Reason string
}

func (e *InvalidMergeError) Error() string {
	return fmt.Sprintf("invalid merge: %s", e.Reason)
}

// EmptyRosterError signals that a window required by the lesson scope
// produced no participants at all; attendance computation cannot proceed.
type EmptyRosterError struct {
	Window Window
}

func (e *EmptyRosterError) Error() string {
	return fmt.Sprintf("no participants in required %s window", e.Window)
}
