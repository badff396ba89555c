package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/attributes"
	"github.com/mrzor/tracelog/internal/config"
	"github.com/mrzor/tracelog/internal/stats"
	"github.com/mrzor/tracelog/internal/tracelog"
	"github.com/mrzor/tracelog/internal/wire"
)

func TestNewReport(t *testing.T) {
	tl, info := sampleTrace(t)

	r := NewReport("boot.bin", tl, info, nil)

	assert.Equal(t, "boot.bin", r.Source)
	assert.Equal(t, "1.0.0", r.Version)
	assert.Equal(t, uint8(32), r.MaxTaskNameLen)
	assert.Equal(t, 10, r.Events)
	assert.Equal(t, &TraceSpan{First: 0, Last: 30}, r.Span)

	require.Len(t, r.Tasks, 3)
	assert.Equal(t, TaskReport{
		Number:     1,
		Name:       "init",
		Created:    true,
		Executions: []analyze.Interval{{Start: 5, End: 15}},
		Count:      1,
		Busy:       10,
	}, r.Tasks[0])
	assert.Equal(t, wire.TaskNumber(2), r.Tasks[1].Number)
	assert.Equal(t, wire.Microseconds(10), r.Tasks[1].CreatedAt)
	assert.Equal(t, TaskReport{
		Number:     3,
		Executions: []analyze.Interval{{Start: 22, End: 27}},
		Count:      1,
		Busy:       5,
	}, r.Tasks[2], "switched task without creation record")

	assert.Equal(t, stats.ExecutionStats{
		MinExecution:  stats.TaskDuration{Task: 2, Duration: 5},
		MaxExecution:  stats.TaskDuration{Task: 1, Duration: 10},
		MeanExecution: 6,
		MinIdle:       1,
		MaxIdle:       1,
	}, r.Stats)
	assert.Equal(t, []OpenTask{{Number: 2, Since: 30}}, r.Open)

	assert.Equal(t, "file_system_init", r.TaskName(2))
	assert.Equal(t, "", r.TaskName(3))
	assert.Equal(t, "", r.TaskName(42))
}

func TestNewReport_CustomAttributes(t *testing.T) {
	tl, info := sampleTrace(t)

	evaluator, err := attributes.NewEvaluator([]config.CustomAttribute{
		{Name: "runs", Expression: `executions`},
		{Name: "kind", Expression: `created ? "created" : "orphan"`},
		{Name: "first", Expression: `[1][executions]`},
	})
	require.NoError(t, err)

	r := NewReport("boot.bin", tl, info, evaluator)

	require.Len(t, r.Tasks, 3)
	assert.Equal(t, map[string]string{"runs": "1", "kind": "created"}, r.Tasks[0].Attributes)
	assert.Equal(t, map[string]string{"runs": "1", "kind": "orphan"}, r.Tasks[2].Attributes)
}

func TestNewReport_HeaderOnly(t *testing.T) {
	tl, err := tracelog.Decode(wire.NewBuilder().Config(tracelog.FormatVersion, 8).Bytes())
	require.NoError(t, err)
	info, err := analyze.Analyze(tl.Events)
	require.NoError(t, err)

	r := NewReport("empty.bin", tl, info, nil)

	assert.Nil(t, r.Span)
	assert.Empty(t, r.Tasks)
	assert.Empty(t, r.Open)
	assert.Equal(t, stats.ExecutionStats{}, r.Stats)
}
