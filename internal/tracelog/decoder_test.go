package tracelog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/tracelog/internal/wire"
)

var v100 = wire.MustParseVersion("1.0.0")

func basicTrace() []byte {
	return wire.NewBuilder().
		Config(v100, 64).
		TaskCreate(0, 1, "Alpha").
		SwitchIn(5, 1).
		SwitchOut(10, 1).
		TaskCreate(15, 2, "Beta").
		Bytes()
}

func TestDecode_BasicValidTrace(t *testing.T) {
	tl, err := Decode(basicTrace())
	require.NoError(t, err)

	require.Len(t, tl.Events, 5)
	assert.Equal(t, wire.Config{Version: v100, MaxTaskNameLen: 64}, tl.Config)
	assert.Equal(t, tl.Config, tl.Events[0])
	assert.Equal(t, wire.TaskCreate{Timestamp: 0, TaskNumber: 1, TaskName: "Alpha"}, tl.Events[1])
	assert.Equal(t, wire.TaskSwitchedIn{Timestamp: 5, TaskNumber: 1}, tl.Events[2])
	assert.Equal(t, wire.TaskSwitchedOut{Timestamp: 10, TaskNumber: 1}, tl.Events[3])
	assert.Equal(t, wire.TaskCreate{Timestamp: 15, TaskNumber: 2, TaskName: "Beta"}, tl.Events[4])
	assert.Equal(t, 2, tl.Tasks())
}

func TestDecode_HeaderOnly(t *testing.T) {
	tl, err := Decode(wire.NewBuilder().Config(v100, 64).Bytes())
	require.NoError(t, err)
	require.Len(t, tl.Events, 1)
	assert.IsType(t, wire.Config{}, tl.Events[0])

	_, _, ok := tl.Span()
	assert.False(t, ok)
}

func TestDecode_MissingConfig(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty buffer", nil},
		{"switch event first", wire.NewBuilder().SwitchIn(1, 0).Bytes()},
		{"create event first", wire.NewBuilder().TaskCreate(1, 0, "x").Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := Decode(tt.buf)
			assert.Nil(t, tl)
			var missing *MissingConfigError
			assert.ErrorAs(t, err, &missing)
		})
	}
}

func TestDecode_VersionGate(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"1.0.0", false},
		{"1.7.0", false},
		{"1.255.255", false},
		{"0.9.9", true},
		{"2.0.0", true},
		{"255.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v := wire.MustParseVersion(tt.version)
			// A trailing garbage tag proves the check happens before any other record.
			buf := wire.NewBuilder().Config(v, 64).Raw(99).Bytes()

			_, err := Decode(buf)
			var mismatch *VersionMismatchError
			if tt.wantErr {
				require.ErrorAs(t, err, &mismatch)
				assert.Equal(t, FormatVersion, mismatch.Expected)
				assert.Equal(t, v, mismatch.Actual)
				return
			}
			var unknown *UnknownEventTypeError
			assert.ErrorAs(t, err, &unknown, "compatible header should let decoding reach the next record")
		})
	}
}

func TestDecode_WithExpectedVersion(t *testing.T) {
	buf := wire.NewBuilder().Config(wire.Version{Major: 3}, 8).Bytes()

	_, err := Decode(buf)
	var mismatch *VersionMismatchError
	require.ErrorAs(t, err, &mismatch)

	tl, err := Decode(buf, WithExpectedVersion(wire.Version{Major: 3, Minor: 1}))
	require.NoError(t, err)
	assert.Equal(t, uint8(8), tl.Config.MaxTaskNameLen)
}

func TestDecode_UnknownEventType(t *testing.T) {
	buf := wire.NewBuilder().
		Config(v100, 64).
		SwitchIn(1, 0).
		Raw(99, 1, 0, 0, 0, 0, 0, 0, 0).
		Bytes()

	_, err := Decode(buf)

	var unknown *UnknownEventTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint8(99), unknown.Tag)
	assert.Equal(t, 5+9, unknown.Offset)
}

func TestDecode_ConfigMidStream(t *testing.T) {
	buf := wire.NewBuilder().
		Config(v100, 64).
		Raw(0, 1, 0, 0, 0, 1, 0, 0, 0).
		Bytes()

	_, err := Decode(buf)

	var unknown *UnknownEventTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint8(0), unknown.Tag)
	assert.Equal(t, 5, unknown.Offset)
}

func TestDecode_Truncated(t *testing.T) {
	full := basicTrace()

	tests := []struct {
		name string
		cut  int
	}{
		{"header", 3},
		{"inside task create", 5 + 40},
		{"inside switch", len(full) - (9 + 64) - 4},
		{"last name byte", len(full) - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := Decode(full[:tt.cut])
			assert.Nil(t, tl)
			var malformed *wire.MalformedEventError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestDecode_OrderPreserved(t *testing.T) {
	buf := wire.NewBuilder().
		Config(v100, 4).
		SwitchOut(30, 2).
		SwitchIn(10, 2).
		TaskCreate(20, 2, "b").
		Bytes()

	tl, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []wire.Event{
		tl.Config,
		wire.TaskSwitchedOut{Timestamp: 30, TaskNumber: 2},
		wire.TaskSwitchedIn{Timestamp: 10, TaskNumber: 2},
		wire.TaskCreate{Timestamp: 20, TaskNumber: 2, TaskName: "b"},
	}, tl.Events)

	first, last, ok := tl.Span()
	require.True(t, ok)
	assert.Equal(t, wire.Microseconds(10), first)
	assert.Equal(t, wire.Microseconds(30), last)
}

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()
	raw := basicTrace()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll(raw, nil)
	require.NoError(t, enc.Close())

	files := map[string][]byte{
		"trace.bin":     raw,
		"trace.bin.gz":  gz.Bytes(),
		"trace.bin.zst": zst,
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, content, 0o600))

			tl, err := Load(path)
			require.NoError(t, err)
			assert.Len(t, tl.Events, 5)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, wire.NewBuilder().SwitchIn(1, 1).Bytes(), 0o600))

	_, err = Load(path)
	var missing *MissingConfigError
	assert.ErrorAs(t, err, &missing)
	assert.Contains(t, err.Error(), path)
}

func TestLoadBytes_CompressionMagicWithoutConfig(t *testing.T) {
	tests := map[string][]byte{
		"gzip": {0x1f, 0x8b, 0x00, 0x00},
		"zstd": {0x28, 0xb5, 0x2f, 0xfd, 0x00},
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadBytes(content)
			var missing *MissingConfigError
			assert.ErrorAs(t, err, &missing)
		})
	}
}

func TestLoadBytes_DecompressedTooLarge(t *testing.T) {
	limit := maxDecompressedSize
	maxDecompressedSize = 8
	t.Cleanup(func() { maxDecompressedSize = limit })

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(basicTrace())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = LoadBytes(gz.Bytes())
	assert.ErrorIs(t, err, ErrDecompressedTooLarge)
}

func TestLoadReader(t *testing.T) {
	tl, err := LoadReader(bytes.NewReader(basicTrace()))
	require.NoError(t, err)
	assert.Len(t, tl.Events, 5)
}
