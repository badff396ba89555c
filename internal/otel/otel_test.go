package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/tracelog/internal/config"
)

func TestIDGenerator_UsesContextTraceID(t *testing.T) {
	want, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	gen := NewIDGenerator()
	traceID, spanID := gen.NewIDs(ContextWithTraceID(context.Background(), want))
	assert.Equal(t, want, traceID)
	assert.True(t, spanID.IsValid())
}

func TestIDGenerator_Random(t *testing.T) {
	gen := NewIDGenerator()

	a, _ := gen.NewIDs(context.Background())
	b, _ := gen.NewIDs(ContextWithTraceID(context.Background(), trace.TraceID{}))
	assert.True(t, a.IsValid())
	assert.True(t, b.IsValid())
	assert.NotEqual(t, a, b)
}

func TestTraceIDFromContext(t *testing.T) {
	_, ok := TraceIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = TraceIDFromContext(ContextWithTraceID(context.Background(), trace.TraceID{}))
	assert.False(t, ok, "zero trace ID is ignored")
}

func TestNewTracerProvider_RootSpanTraceID(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = ShutdownProvider(context.Background(), tp) })

	want := trace.TraceID{0xaa, 0x01}
	ctx, root := tp.Tracer("test").Start(ContextWithTraceID(context.Background(), want), "root")
	_, child := tp.Tracer("test").Start(ctx, "child")
	child.End()
	root.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, want, s.SpanContext().TraceID())
	}
}

func TestNewResource(t *testing.T) {
	cfg := &config.OTELConfig{ServiceName: "firmware-traces", ResourceAttributes: "board=stm32"}

	res, err := NewResource(context.Background(), cfg)
	require.NoError(t, err)

	attrs := res.Set()
	name, ok := attrs.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "firmware-traces", name.AsString())

	board, ok := attrs.Value("board")
	require.True(t, ok)
	assert.Equal(t, "stm32", board.AsString())
}

func TestShutdownProvider_Nil(t *testing.T) {
	assert.NoError(t, ShutdownProvider(context.Background(), nil))
}
