package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/tracelog/internal/attributes"
	"github.com/mrzor/tracelog/internal/config"
	"github.com/mrzor/tracelog/internal/eventstream"
	"github.com/mrzor/tracelog/internal/otel"
	"github.com/mrzor/tracelog/internal/output"
	"github.com/mrzor/tracelog/internal/timesync"
)

// newTracerProvider is replaced in tests.
var newTracerProvider = otel.InitProvider

func newExportCommand() *cobra.Command {
	var traceIDExpr, parentIDExpr string

	cmd := &cobra.Command{
		Use:   "export FILE...",
		Short: "Export trace executions as OpenTelemetry spans",
		Long: `Export each trace as one OpenTelemetry trace over OTLP/HTTP: a root
span for the whole trace and a child span per task execution.

Trace timestamps are relative; --epoch (or TRACELOG_EPOCH) sets the
wall-clock time of timestamp 0 and defaults to now.

--trace-id and --parent-id are expressions over source, version, tasks
and events. A trace ID that is not 32 hex characters is hashed; a parent
ID that is not 16 hex characters is ignored.

The collector is configured with the standard OTEL_* variables.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			evaluator, err := newEvaluator(cmd)
			if err != nil {
				return err
			}
			traceIDs, err := attributes.NewTraceIDEvaluator(traceIDExpr)
			if err != nil {
				return err
			}
			parentIDs, err := attributes.NewParentIDEvaluator(parentIDExpr)
			if err != nil {
				return err
			}
			epoch, err := timesync.ParseEpoch(cfg.Epoch)
			if err != nil {
				return err
			}

			otelCfg, err := config.ParseOTELConfig()
			if err != nil {
				return err
			}
			tp, err := newTracerProvider(cmd.Context(), otelCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize OTEL provider: %w", err)
			}
			defer shutdown(tp, otelCfg)

			tracer := tp.Tracer("tracelog", trace.WithInstrumentationVersion(version))
			formatter := output.NewOTELFormatter(tracer, timesync.NewConverter(epoch), evaluator, traceIDs, parentIDs)

			handler := eventstream.ResultHandlerFunc(func(ctx context.Context, r eventstream.Result) error {
				sc, spans, err := formatter.Export(ctx, r.Source, r.TraceLog, r.Info)
				if err != nil {
					return err
				}
				slog.Info("exported trace", "source", r.Source, "trace_id", sc.TraceID().String(), "spans", spans)
				return nil
			})

			stream := eventstream.New(handler,
				eventstream.WithJobs(cfg.Jobs),
				eventstream.WithStatsOptions(cfg.StatsOptions()...),
				eventstream.WithStdin(cmd.InOrStdin()),
			)
			return stream.Run(cmd.Context(), args)
		},
	}

	cmd.Flags().String("epoch", "", "Wall-clock time of trace timestamp 0 (RFC 3339)")
	cmd.Flags().StringVar(&traceIDExpr, "trace-id", "", "Trace ID expression")
	cmd.Flags().StringVar(&parentIDExpr, "parent-id", "", "Parent span ID expression")
	addAnalysisFlags(cmd)

	return cmd
}

// shutdown flushes pending spans. It uses a fresh context so an interrupt
// still lets exported spans reach the collector.
func shutdown(tp *sdktrace.TracerProvider, cfg *config.OTELConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := otel.ShutdownProvider(ctx, tp); err != nil {
		slog.Error("shutting down OTEL provider", "error", err)
	}
}
