package output

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/attributes"
	tlotel "github.com/mrzor/tracelog/internal/otel"
	"github.com/mrzor/tracelog/internal/timesync"
	"github.com/mrzor/tracelog/internal/tracelog"
	"github.com/mrzor/tracelog/internal/wire"
)

// Span and attribute names.
const (
	RootSpanName      = "tracelog"
	ExecutionSpanName = "task.execution"

	TaskCreateEventName = "task.create"
	TaskOpenEventName   = "task.open"

	AttrSource     = attribute.Key("tracelog.source")
	AttrVersion    = attribute.Key("tracelog.version")
	AttrEvents     = attribute.Key("tracelog.events")
	AttrTasks      = attribute.Key("tracelog.tasks")
	AttrExportID   = attribute.Key("tracelog.export_id")
	AttrTaskNumber = attribute.Key("task.number")
	AttrTaskName   = attribute.Key("task.name")
	AttrExecution  = attribute.Key("task.execution")
	AttrDuration   = attribute.Key("task.duration_us")
	AttrTimestamp  = attribute.Key("tracelog.timestamp_us")
	AttrOpenTasks  = attribute.Key("tracelog.open_tasks")
	AttrEpoch      = attribute.Key("tracelog.epoch")
)

// OTELFormatter exports analyzed traces as OpenTelemetry spans.
//
// Each trace becomes a root span covering its timestamp range. Every
// completed execution becomes a child span, and task creations and
// trailing switch-ins become events on the root span.
//
// Trace IDs from the trace-id expression only apply when the tracer comes
// from a provider built by otel.NewTracerProvider.
type OTELFormatter struct {
	tracer    trace.Tracer
	converter *timesync.Converter
	evaluator *attributes.Evaluator
	traceIDs  *attributes.TraceIDEvaluator
	parentIDs *attributes.ParentIDEvaluator
}

// NewOTELFormatter creates a new OTELFormatter. Nil evaluators disable
// the corresponding feature.
func NewOTELFormatter(tracer trace.Tracer, converter *timesync.Converter, evaluator *attributes.Evaluator, traceIDs *attributes.TraceIDEvaluator, parentIDs *attributes.ParentIDEvaluator) *OTELFormatter {
	return &OTELFormatter{
		tracer:    tracer,
		converter: converter,
		evaluator: evaluator,
		traceIDs:  traceIDs,
		parentIDs: parentIDs,
	}
}

// Export emits the spans of one trace and returns the root span context
// and the number of spans started.
func (f *OTELFormatter) Export(ctx context.Context, source string, tl *tracelog.TraceLog, info *analyze.Info) (trace.SpanContext, int, error) {
	meta := attributes.NewTraceMeta(source, tl)

	ctx, warnings, err := f.rootContext(ctx, meta)
	if err != nil {
		return trace.SpanContext{}, 0, err
	}

	first, last, _ := tl.Span()
	ctx, root := f.tracer.Start(ctx, RootSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(f.converter.ToWallClock(first)),
		trace.WithAttributes(
			AttrSource.String(meta.Source),
			AttrVersion.String(meta.Version),
			AttrEvents.Int(meta.Events),
			AttrTasks.Int(meta.Tasks),
			AttrExportID.String(uuid.NewString()),
			AttrEpoch.String(f.converter.Epoch().Format(time.RFC3339Nano)),
		),
		trace.WithAttributes(warnings...),
	)

	for _, event := range tl.Events {
		create, ok := event.(wire.TaskCreate)
		if !ok {
			continue
		}
		root.AddEvent(TaskCreateEventName,
			trace.WithTimestamp(f.converter.ToWallClock(create.Timestamp)),
			trace.WithAttributes(
				AttrTaskNumber.Int64(int64(create.TaskNumber)),
				AttrTaskName.String(create.TaskName),
			),
		)
	}

	spans := 1
	info.Executions.Each(func(task wire.TaskNumber, intervals []analyze.Interval) {
		attrs := f.taskAttributes(source, info, task)
		for i, iv := range intervals {
			f.exportExecution(ctx, attrs, i, iv)
			spans++
		}
	})

	f.exportOpen(root, info)

	root.SetAttributes(AttrOpenTasks.Int(len(info.Open)))
	root.SetStatus(codes.Ok, "")
	root.End(trace.WithTimestamp(f.converter.ToWallClock(last)))

	slog.Debug("exported trace", "source", source, "trace_id", root.SpanContext().TraceID().String(), "spans", spans)
	return root.SpanContext(), spans, nil
}

// rootContext resolves the trace and parent IDs for meta and returns the
// context the root span starts from, plus warnings for the root span.
func (f *OTELFormatter) rootContext(ctx context.Context, meta attributes.TraceMeta) (context.Context, []attribute.KeyValue, error) {
	var warnings []attribute.KeyValue

	var traceID trace.TraceID
	if f.traceIDs != nil {
		id, w, err := f.traceIDs.EvaluateAndValidate(meta)
		if err != nil {
			return nil, nil, err
		}
		traceID = id
		warnings = append(warnings, w...)
	}

	var parentID trace.SpanID
	if f.parentIDs != nil {
		id, w, err := f.parentIDs.EvaluateAndValidate(meta)
		if err != nil {
			return nil, nil, err
		}
		parentID = id
		warnings = append(warnings, w...)
	}

	if parentID.IsValid() {
		// A remote parent needs a trace ID of its own.
		if !traceID.IsValid() {
			traceID = trace.TraceID(uuid.New())
		}
		parent := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     parentID,
			TraceFlags: trace.FlagsSampled,
			Remote:     true,
		})
		return trace.ContextWithRemoteSpanContext(ctx, parent), warnings, nil
	}

	if traceID.IsValid() {
		ctx = tlotel.ContextWithTraceID(ctx, traceID)
	}
	return ctx, warnings, nil
}

func (f *OTELFormatter) taskAttributes(source string, info *analyze.Info, task wire.TaskNumber) []attribute.KeyValue {
	env := attributes.NewTaskEnv(info, task)
	attrs := []attribute.KeyValue{AttrTaskNumber.Int64(int64(task))}
	if env.Created {
		attrs = append(attrs, AttrTaskName.String(env.Name))
	}

	if f.evaluator != nil {
		custom, err := f.evaluator.EvaluateTaskAttributes(env)
		if err != nil {
			slog.Warn("custom attribute evaluation failed", "source", source, "task", task, "error", err)
		}
		attrs = append(attrs, custom...)
	}
	return attrs
}

func (f *OTELFormatter) exportExecution(ctx context.Context, attrs []attribute.KeyValue, index int, iv analyze.Interval) {
	_, span := f.tracer.Start(ctx, ExecutionSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(f.converter.ToWallClock(iv.Start)),
		trace.WithAttributes(attrs...),
		trace.WithAttributes(
			AttrExecution.Int(index),
			AttrDuration.Int64(int64(iv.Duration())),
		),
	)
	span.End(trace.WithTimestamp(f.converter.ToWallClock(iv.End)))
}

func (f *OTELFormatter) exportOpen(root trace.Span, info *analyze.Info) {
	tasks := make([]wire.TaskNumber, 0, len(info.Open))
	for task := range info.Open {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i] < tasks[j] })

	for _, task := range tasks {
		since := info.Open[task]
		root.AddEvent(TaskOpenEventName,
			trace.WithTimestamp(f.converter.ToWallClock(since)),
			trace.WithAttributes(
				AttrTaskNumber.Int64(int64(task)),
				AttrTimestamp.Int64(int64(since)),
			),
		)
	}
}
