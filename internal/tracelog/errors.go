package tracelog

import (
	"fmt"

	"github.com/mrzor/tracelog/internal/wire"
)

// MissingConfigError is returned when a trace does not start with a Config record.
type MissingConfigError struct{}

func (*MissingConfigError) Error() string {
	return "config event was not found at the start of the trace log"
}

// VersionMismatchError is returned when the trace was written with an
// incompatible major format version.
type VersionMismatchError struct {
	Expected wire.Version
	Actual   wire.Version
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("major version mismatch: expected %d.x.x (%s), but got trace log with version %s",
		e.Expected.Major, e.Expected, e.Actual)
}

// UnknownEventTypeError is returned when a record carries an unrecognized tag.
type UnknownEventTypeError struct {
	Tag    uint8
	Offset int
}

func (e *UnknownEventTypeError) Error() string {
	return fmt.Sprintf("unknown event type %d at offset %d", e.Tag, e.Offset)
}
