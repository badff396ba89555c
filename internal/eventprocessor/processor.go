package eventprocessor

import (
	"fmt"

	"github.com/mrzor/tracelog/internal/wire"
)

// TaskEventHandler handles decoded tracelog events, one method per variant.
type TaskEventHandler interface {
	HandleConfig(cfg wire.Config) error
	HandleTaskCreate(event wire.TaskCreate) error
	HandleTaskSwitchedIn(event wire.TaskSwitchedIn) error
	HandleTaskSwitchedOut(event wire.TaskSwitchedOut) error
}

// Processor routes events to a TaskEventHandler in stream order.
type Processor struct {
	handler TaskEventHandler
	index   int
}

// NewProcessor creates a new event processor.
func NewProcessor(handler TaskEventHandler) *Processor {
	return &Processor{handler: handler}
}

// Index returns the position of the next event to be handled.
func (p *Processor) Index() int {
	return p.index
}

// HandleEvent routes one event by variant.
func (p *Processor) HandleEvent(event wire.Event) error {
	var err error
	switch ev := event.(type) {
	case wire.Config:
		err = p.handler.HandleConfig(ev)
	case wire.TaskCreate:
		err = p.handler.HandleTaskCreate(ev)
	case wire.TaskSwitchedIn:
		err = p.handler.HandleTaskSwitchedIn(ev)
	case wire.TaskSwitchedOut:
		err = p.handler.HandleTaskSwitchedOut(ev)
	default:
		err = fmt.Errorf("unsupported event %T", event)
	}
	if err != nil {
		return err
	}

	p.index++
	return nil
}

// EventError wraps a handler failure with the position of the event that
// caused it.
type EventError struct {
	Index int
	Err   error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d: %v", e.Index, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

// Dispatch routes every event to handler and stops at the first error,
// returned as an *EventError.
func Dispatch(events []wire.Event, handler TaskEventHandler) error {
	p := NewProcessor(handler)
	for _, event := range events {
		if err := p.HandleEvent(event); err != nil {
			return &EventError{Index: p.Index(), Err: err}
		}
	}
	return nil
}
