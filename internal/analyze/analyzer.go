// Package analyze reconstructs task executions from a decoded tracelog and
// validates that switch events form a well-formed schedule.
package analyze

import (
	"errors"

	"github.com/mrzor/tracelog/internal/eventprocessor"
	"github.com/mrzor/tracelog/internal/stats"
	"github.com/mrzor/tracelog/internal/wire"
)

// Info is the result of analyzing a trace.
type Info struct {
	Tasks      *TaskRegistry
	Executions *ExecutionMap
	Stats      stats.ExecutionStats
	// Open lists tasks still switched in at the end of the trace, with the
	// time they were switched in. They have no completed execution for that
	// switch-in and are left out of Executions and Stats.
	Open map[wire.TaskNumber]wire.Microseconds
}

// Analyzer is a TaskEventHandler that tracks switch-ins per task and
// collects completed executions.
type Analyzer struct {
	tasks      *TaskRegistry
	executions *ExecutionMap
	switchIns  map[wire.TaskNumber]wire.Microseconds
}

var _ eventprocessor.TaskEventHandler = (*Analyzer)(nil)

// NewAnalyzer creates an analyzer with empty state.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		tasks:      NewTaskRegistry(),
		executions: NewExecutionMap(),
		switchIns:  make(map[wire.TaskNumber]wire.Microseconds),
	}
}

// HandleConfig ignores the header.
func (a *Analyzer) HandleConfig(wire.Config) error {
	return nil
}

// HandleTaskCreate registers the task. A later creation of the same task
// number replaces the earlier one.
func (a *Analyzer) HandleTaskCreate(event wire.TaskCreate) error {
	a.tasks.Set(Task{Name: event.TaskName, Number: event.TaskNumber, CreatedAt: event.Timestamp})
	return nil
}

// HandleTaskSwitchedIn opens an execution.
func (a *Analyzer) HandleTaskSwitchedIn(event wire.TaskSwitchedIn) error {
	if _, open := a.switchIns[event.TaskNumber]; open {
		return &SequencingError{Kind: DoubleSwitchIn, TaskNumber: event.TaskNumber, Timestamp: event.Timestamp}
	}
	a.switchIns[event.TaskNumber] = event.Timestamp
	return nil
}

// HandleTaskSwitchedOut closes the open execution of the task.
func (a *Analyzer) HandleTaskSwitchedOut(event wire.TaskSwitchedOut) error {
	start, open := a.switchIns[event.TaskNumber]
	if !open {
		return &SequencingError{Kind: SwitchOutWithoutSwitchIn, TaskNumber: event.TaskNumber, Timestamp: event.Timestamp}
	}
	delete(a.switchIns, event.TaskNumber)
	a.executions.Append(event.TaskNumber, Interval{Start: start, End: event.Timestamp})
	return nil
}

// Info returns the analysis state with freshly computed statistics.
func (a *Analyzer) Info(opts ...stats.Option) *Info {
	open := make(map[wire.TaskNumber]wire.Microseconds, len(a.switchIns))
	for task, ts := range a.switchIns {
		open[task] = ts
	}

	return &Info{
		Tasks:      a.tasks,
		Executions: a.executions,
		Stats:      stats.Aggregate(a.tasks, a.executions, opts...),
		Open:       open,
	}
}

// Analyze runs a single pass over events. It fails with a *SequencingError
// on the first switch event that breaks in/out alternation for its task.
func Analyze(events []wire.Event, opts ...stats.Option) (*Info, error) {
	a := NewAnalyzer()
	if err := run(a, events); err != nil {
		return nil, err
	}
	return a.Info(opts...), nil
}

// Validate checks switch alternation without computing statistics.
func Validate(events []wire.Event) error {
	return run(NewAnalyzer(), events)
}

func run(a *Analyzer, events []wire.Event) error {
	err := eventprocessor.Dispatch(events, a)
	var evErr *eventprocessor.EventError
	var seqErr *SequencingError
	if errors.As(err, &evErr) && errors.As(evErr.Err, &seqErr) {
		seqErr.Index = evErr.Index
		return seqErr
	}
	return err
}
