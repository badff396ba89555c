package stats

import (
	"sort"

	"github.com/mrzor/tracelog/internal/wire"
)

// DefaultIdleTaskName is the name of the scheduler's idle task. Its
// executions do not take part in idle gap computation.
const DefaultIdleTaskName = "IDLE"

// Duration is a signed number of microseconds.
type Duration int64

// Interval is one completed execution of a task, from switch-in to switch-out.
type Interval struct {
	Start wire.Microseconds `json:"start" yaml:"start"`
	End   wire.Microseconds `json:"end" yaml:"end"`
}

// Duration returns End - Start.
func (i Interval) Duration() Duration {
	return Duration(i.End) - Duration(i.Start)
}

// TaskDuration pairs a task with one of its execution durations.
type TaskDuration struct {
	Task     wire.TaskNumber `json:"task" yaml:"task"`
	Duration Duration        `json:"duration" yaml:"duration"`
}

// ExecutionStats summarizes the executions of a trace.
type ExecutionStats struct {
	MinExecution  TaskDuration `json:"min_execution" yaml:"min_execution"`
	MaxExecution  TaskDuration `json:"max_execution" yaml:"max_execution"`
	MeanExecution Duration     `json:"mean_execution" yaml:"mean_execution"`
	MinIdle       Duration     `json:"min_idle" yaml:"min_idle"`
	MaxIdle       Duration     `json:"max_idle" yaml:"max_idle"`
}

// TaskLookup resolves task names.
type TaskLookup interface {
	Name(task wire.TaskNumber) (string, bool)
}

// ExecutionSource iterates over the completed executions of every task.
// Iteration order must be stable: it decides which pair wins a tie.
type ExecutionSource interface {
	Each(fn func(task wire.TaskNumber, intervals []Interval))
}

// Option configures Aggregate.
type Option func(*options)

type options struct {
	idleTaskName string
}

// WithIdleTaskName sets the name of the task excluded from idle gaps.
func WithIdleTaskName(name string) Option {
	return func(o *options) {
		o.idleTaskName = name
	}
}

// Aggregate computes execution statistics. With no executions it returns
// the zero ExecutionStats.
func Aggregate(tasks TaskLookup, executions ExecutionSource, opts ...Option) ExecutionStats {
	o := options{idleTaskName: DefaultIdleTaskName}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		result ExecutionStats
		total  Duration
		count  int64
		busy   []Interval
	)

	executions.Each(func(task wire.TaskNumber, intervals []Interval) {
		for _, iv := range intervals {
			d := iv.Duration()
			if count == 0 || d < result.MinExecution.Duration {
				result.MinExecution = TaskDuration{Task: task, Duration: d}
			}
			if count == 0 || d > result.MaxExecution.Duration {
				result.MaxExecution = TaskDuration{Task: task, Duration: d}
			}
			total += d
			count++
		}

		// Tasks without a creation record are not the idle task.
		if name, ok := tasks.Name(task); !ok || name != o.idleTaskName {
			busy = append(busy, intervals...)
		}
	})

	if count == 0 {
		return ExecutionStats{}
	}

	result.MeanExecution = floorDiv(total, Duration(count))
	result.MinIdle, result.MaxIdle = idleRange(busy)
	return result
}

// IdleGaps returns the gaps between consecutive intervals once sorted by
// start time. Overlapping intervals produce negative gaps.
func IdleGaps(intervals []Interval) []Duration {
	if len(intervals) < 2 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	gaps := make([]Duration, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, Duration(sorted[i].Start)-Duration(sorted[i-1].End))
	}
	return gaps
}

// Busy returns the total execution time of intervals.
func Busy(intervals []Interval) Duration {
	var total Duration
	for _, iv := range intervals {
		total += iv.Duration()
	}
	return total
}

func idleRange(intervals []Interval) (lo, hi Duration) {
	gaps := IdleGaps(intervals)
	if len(gaps) == 0 {
		return 0, 0
	}

	lo, hi = gaps[0], gaps[0]
	for _, g := range gaps[1:] {
		if g < lo {
			lo = g
		}
		if g > hi {
			hi = g
		}
	}
	return lo, hi
}

// floorDiv rounds towards negative infinity.
func floorDiv(a, b Duration) Duration {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
