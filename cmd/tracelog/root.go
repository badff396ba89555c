package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracelog",
		Short: "Decode and analyze scheduler tracelogs",
		Long: `tracelog reads binary scheduler traces recorded on embedded targets.

It decodes the event stream, checks that every task alternates between
switch-in and switch-out, and reports per-task execution and idle time.
Traces can also be exported as OpenTelemetry spans.

Traces compressed with gzip or zstd are recognized by their content,
whatever the file name, and decompressed transparently. "-" reads
standard input.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newDecodeCommand())
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newExportCommand())

	return cmd
}
