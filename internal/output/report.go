package output

import (
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/attributes"
	"github.com/mrzor/tracelog/internal/stats"
	"github.com/mrzor/tracelog/internal/tracelog"
	"github.com/mrzor/tracelog/internal/wire"
)

// Report is the printable summary of one analyzed trace.
type Report struct {
	Source         string               `json:"source" yaml:"source"`
	Version        string               `json:"version" yaml:"version"`
	MaxTaskNameLen uint8                `json:"max_task_name_len" yaml:"max_task_name_len"`
	Events         int                  `json:"events" yaml:"events"`
	Span           *TraceSpan           `json:"span,omitempty" yaml:"span,omitempty"`
	Tasks          []TaskReport         `json:"tasks" yaml:"tasks"`
	Stats          stats.ExecutionStats `json:"stats" yaml:"stats"`
	Open           []OpenTask           `json:"open,omitempty" yaml:"open,omitempty"`
}

// TraceSpan is the range of timestamps found in a trace.
type TraceSpan struct {
	First wire.Microseconds `json:"first" yaml:"first"`
	Last  wire.Microseconds `json:"last" yaml:"last"`
}

// TaskReport summarizes one task.
type TaskReport struct {
	Number     wire.TaskNumber    `json:"number" yaml:"number"`
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Created    bool               `json:"created" yaml:"created"`
	CreatedAt  wire.Microseconds  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Executions []analyze.Interval `json:"executions,omitempty" yaml:"executions,omitempty"`
	Count      int                `json:"count" yaml:"count"`
	Busy       stats.Duration     `json:"busy" yaml:"busy"`
	Attributes map[string]string  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// OpenTask is a task still switched in when the trace ends.
type OpenTask struct {
	Number wire.TaskNumber   `json:"number" yaml:"number"`
	Since  wire.Microseconds `json:"since" yaml:"since"`
}

// NewReport builds the report of tl as analyzed in info.
//
// Tasks are listed in creation order, followed by tasks that ran or were
// switched in without a creation record. Custom attributes are evaluated
// with evaluator when it is non-nil; a failing expression is logged and
// left out.
func NewReport(source string, tl *tracelog.TraceLog, info *analyze.Info, evaluator *attributes.Evaluator) *Report {
	r := &Report{
		Source:         source,
		Version:        tl.Config.Version.String(),
		MaxTaskNameLen: tl.Config.MaxTaskNameLen,
		Events:         len(tl.Events),
		Stats:          info.Stats,
	}
	if first, last, ok := tl.Span(); ok {
		r.Span = &TraceSpan{First: first, Last: last}
	}

	for _, number := range taskOrder(info) {
		r.Tasks = append(r.Tasks, newTaskReport(source, info, number, evaluator))
	}

	for number, since := range info.Open {
		r.Open = append(r.Open, OpenTask{Number: number, Since: since})
	}
	sort.Slice(r.Open, func(i, j int) bool { return r.Open[i].Number < r.Open[j].Number })

	return r
}

// TaskName returns the name of task, or "" if it was never created.
func (r *Report) TaskName(number wire.TaskNumber) string {
	for _, t := range r.Tasks {
		if t.Number == number {
			return t.Name
		}
	}
	return ""
}

func newTaskReport(source string, info *analyze.Info, number wire.TaskNumber, evaluator *attributes.Evaluator) TaskReport {
	env := attributes.NewTaskEnv(info, number)
	tr := TaskReport{
		Number:     number,
		Name:       env.Name,
		Created:    env.Created,
		CreatedAt:  env.CreatedAt,
		Executions: info.Executions.Get(number),
		Count:      env.Executions,
		Busy:       env.Busy,
	}

	if evaluator != nil && evaluator.Len() > 0 {
		attrs, err := evaluator.EvaluateTaskAttributes(env)
		if err != nil {
			slog.Warn("custom attribute evaluation failed", "source", source, "task", number, "error", err)
		}
		tr.Attributes = attributeStrings(attrs)
	}
	return tr
}

// taskOrder lists every task number known to info exactly once.
func taskOrder(info *analyze.Info) []wire.TaskNumber {
	seen := make(map[wire.TaskNumber]bool)
	var order []wire.TaskNumber
	add := func(n wire.TaskNumber) {
		if !seen[n] {
			seen[n] = true
			order = append(order, n)
		}
	}

	for _, t := range info.Tasks.Tasks() {
		add(t.Number)
	}
	for _, n := range info.Executions.Tasks() {
		add(n)
	}

	open := make([]wire.TaskNumber, 0, len(info.Open))
	for n := range info.Open {
		open = append(open, n)
	}
	sort.Slice(open, func(i, j int) bool { return open[i] < open[j] })
	for _, n := range open {
		add(n)
	}
	return order
}

func attributeStrings(attrs []attribute.KeyValue) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}
