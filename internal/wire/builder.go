package wire

import (
	"encoding/binary"
	"fmt"
)

// DefaultMaxTaskNameLen is the name width used by a Builder until a Config
// record sets another one.
const DefaultMaxTaskNameLen = 64

// Append encodes e under cfg and appends it to dst. Task names longer than
// the configured width are truncated so that the field keeps a trailing NUL.
func Append(dst []byte, e Event, cfg Config) ([]byte, error) {
	switch ev := e.(type) {
	case Config:
		return binary.Append(dst, binary.LittleEndian, rawConfig{
			Type:           uint8(EventConfig),
			Major:          ev.Version.Major,
			Minor:          ev.Version.Minor,
			Patch:          ev.Version.Patch,
			MaxTaskNameLen: ev.MaxTaskNameLen,
		})
	case TaskCreate:
		out, err := binary.Append(dst, binary.LittleEndian, rawTaskEvent{
			Type:       uint8(EventTaskCreate),
			Timestamp:  uint32(ev.Timestamp),
			TaskNumber: uint32(ev.TaskNumber),
		})
		if err != nil {
			return nil, err
		}
		return append(out, encodeName(ev.TaskName, int(cfg.MaxTaskNameLen))...), nil
	case TaskSwitchedIn:
		return binary.Append(dst, binary.LittleEndian, rawTaskEvent{
			Type:       uint8(EventTaskSwitchedIn),
			Timestamp:  uint32(ev.Timestamp),
			TaskNumber: uint32(ev.TaskNumber),
		})
	case TaskSwitchedOut:
		return binary.Append(dst, binary.LittleEndian, rawTaskEvent{
			Type:       uint8(EventTaskSwitchedOut),
			Timestamp:  uint32(ev.Timestamp),
			TaskNumber: uint32(ev.TaskNumber),
		})
	default:
		return nil, fmt.Errorf("cannot encode %T", e)
	}
}

func encodeName(name string, width int) []byte {
	field := make([]byte, width)
	if width == 0 {
		return field
	}
	raw := []byte(name)
	if len(raw) >= width {
		raw = raw[:width-1]
	}
	copy(field, raw)
	return field
}

// Builder assembles tracelog buffers for fixtures and tests.
// The name width follows the last Config record appended.
type Builder struct {
	buf []byte
	cfg Config
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{MaxTaskNameLen: DefaultMaxTaskNameLen}}
}

// Config appends a header record.
func (b *Builder) Config(version Version, maxTaskNameLen uint8) *Builder {
	return b.Event(Config{Version: version, MaxTaskNameLen: maxTaskNameLen})
}

// TaskCreate appends a task creation record.
func (b *Builder) TaskCreate(ts Microseconds, task TaskNumber, name string) *Builder {
	return b.Event(TaskCreate{Timestamp: ts, TaskNumber: task, TaskName: name})
}

// SwitchIn appends a switch-in record.
func (b *Builder) SwitchIn(ts Microseconds, task TaskNumber) *Builder {
	return b.Event(TaskSwitchedIn{Timestamp: ts, TaskNumber: task})
}

// SwitchOut appends a switch-out record.
func (b *Builder) SwitchOut(ts Microseconds, task TaskNumber) *Builder {
	return b.Event(TaskSwitchedOut{Timestamp: ts, TaskNumber: task})
}

// Event appends any event.
func (b *Builder) Event(e Event) *Builder {
	out, err := Append(b.buf, e, b.cfg)
	if err != nil {
		panic(err)
	}
	b.buf = out
	if cfg, ok := e.(Config); ok {
		b.cfg = cfg
	}
	return b
}

// Raw appends arbitrary bytes, typically to build malformed traces.
func (b *Builder) Raw(p ...byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// Bytes returns the assembled buffer.
func (b *Builder) Bytes() []byte {
	return b.buf
}
