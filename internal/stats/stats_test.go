package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrzor/tracelog/internal/wire"
)

type names map[wire.TaskNumber]string

func (n names) Name(task wire.TaskNumber) (string, bool) {
	name, ok := n[task]
	return name, ok
}

type taskIntervals struct {
	task      wire.TaskNumber
	intervals []Interval
}

type orderedExecutions []taskIntervals

func (o orderedExecutions) Each(fn func(wire.TaskNumber, []Interval)) {
	for _, ti := range o {
		fn(ti.task, ti.intervals)
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(names{1: "Task1"}, orderedExecutions{})
	assert.Equal(t, ExecutionStats{}, got)
}

func TestAggregate_BasicFlow(t *testing.T) {
	got := Aggregate(names{1: "T1"}, orderedExecutions{
		{1, []Interval{{Start: 200, End: 300}}},
	})

	assert.Equal(t, ExecutionStats{
		MinExecution:  TaskDuration{Task: 1, Duration: 100},
		MaxExecution:  TaskDuration{Task: 1, Duration: 100},
		MeanExecution: 100,
	}, got)
}

func TestAggregate_TwoTasksWithIdleGap(t *testing.T) {
	got := Aggregate(names{1: "Task1", 2: "Task2"}, orderedExecutions{
		{1, []Interval{{Start: 200, End: 300}, {Start: 550, End: 600}}},
		{2, []Interval{{Start: 350, End: 500}}},
	})

	assert.Equal(t, TaskDuration{Task: 1, Duration: 50}, got.MinExecution)
	assert.Equal(t, TaskDuration{Task: 2, Duration: 150}, got.MaxExecution)
	assert.Equal(t, Duration(100), got.MeanExecution)
	assert.Equal(t, Duration(50), got.MinIdle)
	assert.Equal(t, Duration(50), got.MaxIdle)
}

func TestAggregate_FloorMean(t *testing.T) {
	got := Aggregate(names{1: "Task1"}, orderedExecutions{
		{1, []Interval{{Start: 200, End: 301}, {Start: 400, End: 500}}},
	})

	assert.Equal(t, Duration(100), got.MeanExecution)
	assert.Equal(t, Duration(99), got.MinIdle)
	assert.Equal(t, Duration(99), got.MaxIdle)
}

func TestAggregate_BackToBack(t *testing.T) {
	got := Aggregate(names{1: "Task1", 2: "Task2", 3: "Task3"}, orderedExecutions{
		{1, []Interval{{Start: 200, End: 300}}},
		{2, []Interval{{Start: 300, End: 500}}},
		{3, []Interval{{Start: 500, End: 700}}},
	})

	assert.Equal(t, TaskDuration{Task: 1, Duration: 100}, got.MinExecution)
	assert.Equal(t, TaskDuration{Task: 2, Duration: 200}, got.MaxExecution)
	assert.Equal(t, Duration(166), got.MeanExecution)
	assert.Equal(t, Duration(0), got.MinIdle)
	assert.Equal(t, Duration(0), got.MaxIdle)
}

func TestAggregate_TiesKeepFirstEncountered(t *testing.T) {
	got := Aggregate(names{}, orderedExecutions{
		{7, []Interval{{Start: 0, End: 10}}},
		{3, []Interval{{Start: 20, End: 30}}},
	})

	assert.Equal(t, wire.TaskNumber(7), got.MinExecution.Task)
	assert.Equal(t, wire.TaskNumber(7), got.MaxExecution.Task)
}

func TestAggregate_IdleTaskExcludedFromGaps(t *testing.T) {
	execs := orderedExecutions{
		{1, []Interval{{Start: 0, End: 10}, {Start: 100, End: 110}}},
		{9, []Interval{{Start: 10, End: 100}}},
		{2, []Interval{{Start: 40, End: 50}}},
	}

	got := Aggregate(names{1: "A", 2: "B", 9: "IDLE"}, execs)
	assert.Equal(t, Duration(30), got.MinIdle)
	assert.Equal(t, Duration(50), got.MaxIdle)
	assert.Equal(t, TaskDuration{Task: 9, Duration: 90}, got.MaxExecution, "idle task still counts for executions")

	renamed := Aggregate(names{1: "A", 2: "B", 9: "IDLE"}, execs, WithIdleTaskName("B"))
	assert.Equal(t, Duration(0), renamed.MinIdle)
	assert.Equal(t, Duration(0), renamed.MaxIdle)
}

func TestAggregate_UnnamedTasksCountAsBusy(t *testing.T) {
	got := Aggregate(names{}, orderedExecutions{
		{1, []Interval{{Start: 0, End: 10}}},
		{2, []Interval{{Start: 25, End: 30}}},
	})

	assert.Equal(t, Duration(15), got.MinIdle)
	assert.Equal(t, Duration(15), got.MaxIdle)
}

func TestAggregate_OverlapGivesNegativeGap(t *testing.T) {
	got := Aggregate(names{1: "A", 2: "B"}, orderedExecutions{
		{1, []Interval{{Start: 0, End: 100}}},
		{2, []Interval{{Start: 50, End: 60}}},
	})

	assert.Equal(t, Duration(-50), got.MinIdle)
	assert.Equal(t, Duration(-50), got.MaxIdle)
}

func TestIdleGaps(t *testing.T) {
	tests := []struct {
		name      string
		intervals []Interval
		want      []Duration
	}{
		{"none", nil, nil},
		{"single", []Interval{{Start: 1, End: 2}}, nil},
		{"unsorted input", []Interval{{Start: 30, End: 40}, {Start: 0, End: 10}, {Start: 15, End: 20}}, []Duration{5, 10}},
		{"equal starts sort by end", []Interval{{Start: 0, End: 20}, {Start: 0, End: 10}}, []Duration{-10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IdleGaps(tt.intervals))
		})
	}
}

func TestBusy(t *testing.T) {
	assert.Equal(t, Duration(0), Busy(nil))
	assert.Equal(t, Duration(150), Busy([]Interval{{Start: 200, End: 300}, {Start: 550, End: 600}}))
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, Duration(100), floorDiv(201, 2))
	assert.Equal(t, Duration(-101), floorDiv(-201, 2))
	assert.Equal(t, Duration(-100), floorDiv(-200, 2))
}
