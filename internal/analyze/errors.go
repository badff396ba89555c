package analyze

import (
	"fmt"

	"github.com/mrzor/tracelog/internal/wire"
)

// SequenceErrorKind classifies switch sequencing violations.
type SequenceErrorKind int

// Sequencing violations.
const (
	DoubleSwitchIn SequenceErrorKind = iota + 1
	SwitchOutWithoutSwitchIn
)

func (k SequenceErrorKind) String() string {
	switch k {
	case DoubleSwitchIn:
		return "double switch-in"
	case SwitchOutWithoutSwitchIn:
		return "switch-out without switch-in"
	default:
		return "unknown sequencing error"
	}
}

// SequencingError is returned when switch-in and switch-out events of a task
// do not alternate.
type SequencingError struct {
	Kind       SequenceErrorKind
	TaskNumber wire.TaskNumber
	Timestamp  wire.Microseconds
	// Index is the position of the offending event in the analyzed sequence.
	Index int
}

func (e *SequencingError) Error() string {
	return fmt.Sprintf("%s: task %d at %dus (event %d)", e.Kind, e.TaskNumber, e.Timestamp, e.Index)
}
