package submission

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a submit attempt.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether an attempt ends in s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Transition is emitted every time an attempt changes state.
type Transition struct {
	AttemptID uuid.UUID
	From      State
	To        State
	At        time.Time
	// Err is set when To is StateFailed.
	Err error
}

// Observer receives transitions after the controller has applied them.
type Observer func(Transition)
