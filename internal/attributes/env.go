package attributes

import (
	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/stats"
	"github.com/mrzor/tracelog/internal/tracelog"
	"github.com/mrzor/tracelog/internal/wire"
)

// TaskEnv is what a custom attribute expression sees for one task.
type TaskEnv struct {
	Name       string
	Number     wire.TaskNumber
	Created    bool
	CreatedAt  wire.Microseconds
	Executions int
	Busy       stats.Duration
}

// NewTaskEnv collects the evaluation inputs of task from info. Tasks that
// were switched but never created get an empty name and Created false.
func NewTaskEnv(info *analyze.Info, number wire.TaskNumber) TaskEnv {
	intervals := info.Executions.Get(number)
	env := TaskEnv{
		Number:     number,
		Executions: len(intervals),
		Busy:       stats.Busy(intervals),
	}
	if task, ok := info.Tasks.Get(number); ok {
		env.Name = task.Name
		env.Created = true
		env.CreatedAt = task.CreatedAt
	}
	return env
}

func (t TaskEnv) vars() map[string]interface{} {
	return map[string]interface{}{
		"name":       t.Name,
		"number":     int(t.Number),
		"created":    t.Created,
		"created_at": int(t.CreatedAt),
		"executions": t.Executions,
		"busy":       int(t.Busy),
	}
}

// TraceMeta is what trace and parent ID expressions see.
type TraceMeta struct {
	Source  string
	Version string
	Tasks   int
	Events  int
}

// NewTraceMeta describes tl, read from source.
func NewTraceMeta(source string, tl *tracelog.TraceLog) TraceMeta {
	return TraceMeta{
		Source:  source,
		Version: tl.Config.Version.String(),
		Tasks:   tl.Tasks(),
		Events:  len(tl.Events),
	}
}

func (m TraceMeta) vars() map[string]interface{} {
	return map[string]interface{}{
		"source":  m.Source,
		"version": m.Version,
		"tasks":   m.Tasks,
		"events":  m.Events,
	}
}

// Type-checking environments. Values are zero; only their types matter.
var (
	taskExprEnv  = TaskEnv{}.vars()
	traceExprEnv = TraceMeta{}.vars()
)
