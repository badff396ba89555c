package analyze

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mrzor/tracelog/internal/stats"
	"github.com/mrzor/tracelog/internal/wire"
)

// Interval is one completed execution of a task.
type Interval = stats.Interval

// Task is a task announced by a TaskCreate record.
type Task struct {
	Name      string            `json:"name" yaml:"name"`
	Number    wire.TaskNumber   `json:"number" yaml:"number"`
	CreatedAt wire.Microseconds `json:"created_at" yaml:"created_at"`
}

// TaskRegistry holds one Task per task number, in order of first creation.
type TaskRegistry struct {
	tasks *orderedmap.OrderedMap[wire.TaskNumber, Task]
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: orderedmap.New[wire.TaskNumber, Task]()}
}

// Get retrieves a task by number (query).
func (r *TaskRegistry) Get(number wire.TaskNumber) (Task, bool) {
	return r.tasks.Get(number)
}

// Name returns the name of a task (query).
func (r *TaskRegistry) Name(number wire.TaskNumber) (string, bool) {
	task, ok := r.tasks.Get(number)
	return task.Name, ok
}

// Len returns the number of registered tasks (query).
func (r *TaskRegistry) Len() int {
	return r.tasks.Len()
}

// Tasks returns all tasks in registration order (query).
func (r *TaskRegistry) Tasks() []Task {
	out := make([]Task, 0, r.tasks.Len())
	for pair := r.tasks.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Set stores a task (command).
// If the task number is already registered, the task is replaced in place.
func (r *TaskRegistry) Set(task Task) {
	r.tasks.Set(task.Number, task)
}

// ExecutionMap holds the completed executions of every task, keyed by task
// number in order of first completed execution.
type ExecutionMap struct {
	intervals *orderedmap.OrderedMap[wire.TaskNumber, []Interval]
}

// NewExecutionMap creates an empty execution map.
func NewExecutionMap() *ExecutionMap {
	return &ExecutionMap{intervals: orderedmap.New[wire.TaskNumber, []Interval]()}
}

// Append records a completed execution for task (command).
func (m *ExecutionMap) Append(task wire.TaskNumber, iv Interval) {
	current, _ := m.intervals.Get(task)
	m.intervals.Set(task, append(current, iv))
}

// Get returns the executions of task in completion order (query).
func (m *ExecutionMap) Get(task wire.TaskNumber) []Interval {
	intervals, _ := m.intervals.Get(task)
	return intervals
}

// Len returns the number of tasks with at least one execution (query).
func (m *ExecutionMap) Len() int {
	return m.intervals.Len()
}

// Count returns the total number of executions (query).
func (m *ExecutionMap) Count() int {
	n := 0
	for pair := m.intervals.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value)
	}
	return n
}

// Tasks returns the task numbers in order of first completed execution (query).
func (m *ExecutionMap) Tasks() []wire.TaskNumber {
	out := make([]wire.TaskNumber, 0, m.intervals.Len())
	for pair := m.intervals.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Each calls fn for every task in order (query).
func (m *ExecutionMap) Each(fn func(task wire.TaskNumber, intervals []Interval)) {
	for pair := m.intervals.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}
