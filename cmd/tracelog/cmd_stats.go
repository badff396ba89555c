package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrzor/tracelog/internal/attributes"
	"github.com/mrzor/tracelog/internal/config"
	"github.com/mrzor/tracelog/internal/eventstream"
	"github.com/mrzor/tracelog/internal/output"
)

// loadConfig reads the environment configuration and applies the flags the
// user set explicitly on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("idle-task") {
		cfg.IdleTaskName, _ = flags.GetString("idle-task")
	}
	if flags.Changed("epoch") {
		cfg.Epoch, _ = flags.GetString("epoch")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEvaluator(cmd *cobra.Command) (*attributes.Evaluator, error) {
	values, _ := cmd.Flags().GetStringArray("attr")
	customAttrs, err := config.ParseCustomAttributes(values)
	if err != nil {
		return nil, err
	}
	return attributes.NewEvaluator(customAttrs)
}

func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 4, "Number of traces processed concurrently")
	cmd.Flags().String("idle-task", "IDLE", "Name of the idle task, excluded from idle gaps")
	cmd.Flags().StringArray("attr", nil, "Custom task attribute as name=expression (repeatable)")
}

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: "Report execution statistics for one or more traces",
		Long: `Analyze each trace and report its tasks, their executions and the
aggregate execution and idle statistics.

Custom attributes are expressions evaluated per task with the variables
name, number, created, created_at, executions and busy. For example:

  tracelog stats --attr 'busy_ms=busy / 1000' trace.bin`,
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

			var reports []*output.Report
			handler := eventstream.ResultHandlerFunc(func(_ context.Context, r eventstream.Result) error {
				reports = append(reports, output.NewReport(r.Source, r.TraceLog, r.Info, evaluator))
				return nil
			})

			stream := eventstream.New(handler,
				eventstream.WithJobs(cfg.Jobs),
				eventstream.WithStatsOptions(cfg.StatsOptions()...),
				eventstream.WithStdin(cmd.InOrStdin()),
			)
			if err := stream.Run(cmd.Context(), args); err != nil {
				return err
			}

			if err := output.Write(cmd.OutOrStdout(), cfg.Format, reports); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("format", config.FormatText, "Output format: text, json or yaml")
	addAnalysisFlags(cmd)

	return cmd
}
