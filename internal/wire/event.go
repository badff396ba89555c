package wire

import (
	"fmt"
	"math"

	"github.com/Masterminds/semver/v3"
)

// Microseconds is a tracelog timestamp as recorded by the target.
type Microseconds uint32

// TaskNumber identifies a task on the traced scheduler.
type TaskNumber uint32

// EventType is the tag byte that prefixes every record.
type EventType uint8

// Record tags.
const (
	EventConfig          EventType = 0
	EventTaskCreate      EventType = 1
	EventTaskSwitchedIn  EventType = 2
	EventTaskSwitchedOut EventType = 3
)

func (t EventType) String() string {
	switch t {
	case EventConfig:
		return "Config"
	case EventTaskCreate:
		return "TaskCreate"
	case EventTaskSwitchedIn:
		return "TaskSwitchedIn"
	case EventTaskSwitchedOut:
		return "TaskSwitchedOut"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// Event is one decoded tracelog record. The set of implementations is
// closed: Config, TaskCreate, TaskSwitchedIn and TaskSwitchedOut.
type Event interface {
	Type() EventType
	isEvent()
}

// Version is the tracelog format version carried by the Config record.
type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// ParseVersion parses a "major.minor.patch" string. Pre-release and build
// suffixes are rejected and every component must fit in a byte.
func ParseVersion(s string) (Version, error) {
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("unsupported version format %q, expected major.minor.patch: %w", s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Version{}, fmt.Errorf("unsupported version format %q, expected major.minor.patch", s)
	}
	if v.Major() > math.MaxUint8 || v.Minor() > math.MaxUint8 || v.Patch() > math.MaxUint8 {
		return Version{}, fmt.Errorf("version %q out of range: components must be at most %d", s, math.MaxUint8)
	}
	//nolint:gosec // Bounds checked above
	return Version{Major: uint8(v.Major()), Minor: uint8(v.Minor()), Patch: uint8(v.Patch())}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compatible reports whether two format versions can be used together.
// Only the major component matters.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Config is the header record. It is always the first record of a trace.
type Config struct {
	Version        Version
	MaxTaskNameLen uint8
}

// TaskCreate records the creation of a task.
type TaskCreate struct {
	Timestamp  Microseconds
	TaskNumber TaskNumber
	TaskName   string
}

// TaskSwitchedIn records a task entering the running state.
type TaskSwitchedIn struct {
	Timestamp  Microseconds
	TaskNumber TaskNumber
}

// TaskSwitchedOut records a task leaving the running state.
type TaskSwitchedOut struct {
	Timestamp  Microseconds
	TaskNumber TaskNumber
}

func (Config) Type() EventType          { return EventConfig }
func (TaskCreate) Type() EventType      { return EventTaskCreate }
func (TaskSwitchedIn) Type() EventType  { return EventTaskSwitchedIn }
func (TaskSwitchedOut) Type() EventType { return EventTaskSwitchedOut }

func (Config) isEvent()          {}
func (TaskCreate) isEvent()      {}
func (TaskSwitchedIn) isEvent()  {}
func (TaskSwitchedOut) isEvent() {}

func (c Config) String() string {
	return fmt.Sprintf("Config(version=%s, max_task_name_len=%d)", c.Version, c.MaxTaskNameLen)
}

func (e TaskCreate) String() string {
	return fmt.Sprintf("TaskCreate(timestamp=%d, task_number=%d, task_name=%q)", e.Timestamp, e.TaskNumber, e.TaskName)
}

func (e TaskSwitchedIn) String() string {
	return fmt.Sprintf("TaskSwitchedIn(timestamp=%d, task_number=%d)", e.Timestamp, e.TaskNumber)
}

func (e TaskSwitchedOut) String() string {
	return fmt.Sprintf("TaskSwitchedOut(timestamp=%d, task_number=%d)", e.Timestamp, e.TaskNumber)
}

// Timestamp returns the timestamp carried by e. The Config record has none.
func Timestamp(e Event) (Microseconds, bool) {
	switch ev := e.(type) {
	case TaskCreate:
		return ev.Timestamp, true
	case TaskSwitchedIn:
		return ev.Timestamp, true
	case TaskSwitchedOut:
		return ev.Timestamp, true
	default:
		return 0, false
	}
}
