// Package tracelog decodes complete scheduler tracelog buffers into ordered
// event sequences.
package tracelog

import (
	"fmt"

	"github.com/mrzor/tracelog/internal/wire"
)

// TraceLog is a fully decoded trace. Events[0] is always the Config record.
type TraceLog struct {
	Config wire.Config
	Events []wire.Event
}

// Option configures decoding.
type Option func(*options)

type options struct {
	expected wire.Version
}

// WithExpectedVersion overrides the format version traces are checked against.
func WithExpectedVersion(v wire.Version) Option {
	return func(o *options) {
		o.expected = v
	}
}

// Decode decodes buf in a single pass. The buffer must hold exactly a header
// followed by whole records; any error aborts decoding and no events are
// returned.
func Decode(buf []byte, opts ...Option) (*TraceLog, error) {
	o := options{expected: FormatVersion}
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := negotiate(buf, o.expected)
	if err != nil {
		return nil, err
	}

	events := []wire.Event{cfg}
	offset := wire.ConfigSize

	for offset < len(buf) {
		typ := wire.EventType(buf[offset])

		// The header is not repeatable mid-stream.
		if typ == wire.EventConfig {
			return nil, &UnknownEventTypeError{Tag: buf[offset], Offset: offset}
		}

		size, err := wire.Size(typ, cfg)
		if err != nil {
			return nil, &UnknownEventTypeError{Tag: buf[offset], Offset: offset}
		}

		event, err := wire.Decode(typ, buf[offset:], cfg)
		if err != nil {
			return nil, fmt.Errorf("decoding event at offset %d: %w", offset, err)
		}

		events = append(events, event)
		offset += size
	}

	return &TraceLog{Config: cfg, Events: events}, nil
}

// Tasks returns the number of TaskCreate records in the trace.
func (t *TraceLog) Tasks() int {
	n := 0
	for _, e := range t.Events {
		if e.Type() == wire.EventTaskCreate {
			n++
		}
	}
	return n
}

// Span returns the first and last timestamps found in the trace.
// ok is false when the trace holds no timestamped record.
func (t *TraceLog) Span() (first, last wire.Microseconds, ok bool) {
	for _, e := range t.Events {
		ts, has := wire.Timestamp(e)
		if !has {
			continue
		}
		if !ok || ts < first {
			first = ts
		}
		if !ok || ts > last {
			last = ts
		}
		ok = true
	}
	return first, last, ok
}
