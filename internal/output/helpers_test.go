package output

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/tracelog"
	"github.com/mrzor/tracelog/internal/wire"
)

// sampleTrace has three tasks, one of them never created, and a task still
// switched in at the end.
func sampleTrace(t *testing.T) (*tracelog.TraceLog, *analyze.Info) {
	t.Helper()

	buf := wire.NewBuilder().
		Config(tracelog.FormatVersion, 32).
		TaskCreate(0, 1, "init").
		SwitchIn(5, 1).
		TaskCreate(10, 2, "file_system_init").
		SwitchOut(15, 1).
		SwitchIn(16, 2).
		SwitchOut(21, 2).
		SwitchIn(22, 3).
		SwitchOut(27, 3).
		SwitchIn(30, 2).
		Bytes()

	tl, err := tracelog.Decode(buf)
	require.NoError(t, err)

	info, err := analyze.Analyze(tl.Events)
	require.NoError(t, err)
	return tl, info
}

func mustAtoi(t *testing.T, s string) int64 {
	t.Helper()
	n, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return n
}
