package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// rawConfig matches the packed Config record.
type rawConfig struct {
	Type           uint8
	Major          uint8
	Minor          uint8
	Patch          uint8
	MaxTaskNameLen uint8
}

// rawTaskEvent matches the fixed part shared by TaskCreate, TaskSwitchedIn
// and TaskSwitchedOut. TaskCreate is followed by the name field.
type rawTaskEvent struct {
	Type       uint8
	Timestamp  uint32
	TaskNumber uint32
}

// Fixed record sizes in bytes.
var (
	ConfigSize    = binary.Size(rawConfig{})
	TaskEventSize = binary.Size(rawTaskEvent{})
)

// ErrInvalidTaskName is returned when a task name is not valid UTF-8.
var ErrInvalidTaskName = errors.New("invalid task name")

// MalformedEventError is returned when a buffer is shorter than the record
// it is supposed to hold.
type MalformedEventError struct {
	Type EventType
	Need int
	Have int
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed %s event: need %d bytes, have %d", e.Type, e.Need, e.Have)
}

// Size returns the encoded size of a record of type t under cfg.
func Size(t EventType, cfg Config) (int, error) {
	switch t {
	case EventConfig:
		return ConfigSize, nil
	case EventTaskCreate:
		return TaskEventSize + int(cfg.MaxTaskNameLen), nil
	case EventTaskSwitchedIn, EventTaskSwitchedOut:
		return TaskEventSize, nil
	default:
		return 0, fmt.Errorf("no size for %s", t)
	}
}

// DecodeConfig decodes a Config record from the start of buf.
func DecodeConfig(buf []byte) (Config, error) {
	var raw rawConfig
	if err := readFixed(buf, EventConfig, ConfigSize, &raw); err != nil {
		return Config{}, err
	}
	return Config{
		Version:        Version{Major: raw.Major, Minor: raw.Minor, Patch: raw.Patch},
		MaxTaskNameLen: raw.MaxTaskNameLen,
	}, nil
}

// DecodeTaskCreate decodes a TaskCreate record from the start of buf using
// the name width announced by cfg.
func DecodeTaskCreate(buf []byte, cfg Config) (TaskCreate, error) {
	size, _ := Size(EventTaskCreate, cfg) //nolint:errcheck // Known type
	var raw rawTaskEvent
	if err := readFixed(buf, EventTaskCreate, size, &raw); err != nil {
		return TaskCreate{}, err
	}

	name, err := decodeName(buf[TaskEventSize:size])
	if err != nil {
		return TaskCreate{}, fmt.Errorf("task %d: %w", raw.TaskNumber, err)
	}

	return TaskCreate{
		Timestamp:  Microseconds(raw.Timestamp),
		TaskNumber: TaskNumber(raw.TaskNumber),
		TaskName:   name,
	}, nil
}

// DecodeTaskSwitchedIn decodes a TaskSwitchedIn record from the start of buf.
func DecodeTaskSwitchedIn(buf []byte) (TaskSwitchedIn, error) {
	var raw rawTaskEvent
	if err := readFixed(buf, EventTaskSwitchedIn, TaskEventSize, &raw); err != nil {
		return TaskSwitchedIn{}, err
	}
	return TaskSwitchedIn{Timestamp: Microseconds(raw.Timestamp), TaskNumber: TaskNumber(raw.TaskNumber)}, nil
}

// DecodeTaskSwitchedOut decodes a TaskSwitchedOut record from the start of buf.
func DecodeTaskSwitchedOut(buf []byte) (TaskSwitchedOut, error) {
	var raw rawTaskEvent
	if err := readFixed(buf, EventTaskSwitchedOut, TaskEventSize, &raw); err != nil {
		return TaskSwitchedOut{}, err
	}
	return TaskSwitchedOut{Timestamp: Microseconds(raw.Timestamp), TaskNumber: TaskNumber(raw.TaskNumber)}, nil
}

// Decode decodes one record of type t from the start of buf.
func Decode(t EventType, buf []byte, cfg Config) (Event, error) {
	switch t {
	case EventConfig:
		return DecodeConfig(buf)
	case EventTaskCreate:
		return DecodeTaskCreate(buf, cfg)
	case EventTaskSwitchedIn:
		return DecodeTaskSwitchedIn(buf)
	case EventTaskSwitchedOut:
		return DecodeTaskSwitchedOut(buf)
	default:
		return nil, fmt.Errorf("cannot decode %s", t)
	}
}

// readFixed checks that buf holds at least size bytes and reads the fixed
// little-endian prefix into raw.
func readFixed(buf []byte, t EventType, size int, raw any) error {
	if len(buf) < size {
		return &MalformedEventError{Type: t, Need: size, Have: len(buf)}
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, raw); err != nil {
		return fmt.Errorf("parsing %s event: %w", t, err)
	}
	return nil
}

// decodeName keeps the bytes before the first NUL and validates them as
// UTF-8. Anything after the first NUL is ignored.
func decodeName(field []byte) (string, error) {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	out, _, err := transform.Bytes(encoding.UTF8Validator, field)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTaskName, err)
	}
	return string(out), nil
}
