package otel

import (
	"context"
	"crypto/rand"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type traceIDKey struct{}

// ContextWithTraceID asks the IDGenerator to give the next root span
// started with ctx the trace ID id. A zero id is ignored.
func ContextWithTraceID(ctx context.Context, id trace.TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext returns the trace ID set by ContextWithTraceID.
func TraceIDFromContext(ctx context.Context) (trace.TraceID, bool) {
	id, ok := ctx.Value(traceIDKey{}).(trace.TraceID)
	return id, ok && id.IsValid()
}

// IDGenerator generates random span IDs, and random trace IDs unless the
// context carries one.
type IDGenerator struct{}

var _ sdktrace.IDGenerator = IDGenerator{}

// NewIDGenerator creates an IDGenerator.
func NewIDGenerator() IDGenerator {
	return IDGenerator{}
}

// NewIDs returns the IDs of a new root span.
func (g IDGenerator) NewIDs(ctx context.Context) (trace.TraceID, trace.SpanID) {
	traceID, ok := TraceIDFromContext(ctx)
	for !ok {
		_, _ = rand.Read(traceID[:]) //nolint:errcheck // crypto/rand.Read never fails
		ok = traceID.IsValid()
	}
	return traceID, g.NewSpanID(ctx, traceID)
}

// NewSpanID returns a non-zero random span ID.
func (IDGenerator) NewSpanID(context.Context, trace.TraceID) trace.SpanID {
	var spanID trace.SpanID
	for !spanID.IsValid() {
		_, _ = rand.Read(spanID[:]) //nolint:errcheck // crypto/rand.Read never fails
	}
	return spanID
}
