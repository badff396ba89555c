package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrzor/tracelog/internal/analyze"
	"github.com/mrzor/tracelog/internal/eventstream"
	"github.com/mrzor/tracelog/internal/output"
	"github.com/mrzor/tracelog/internal/tracelog"
)

func newDecodeCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Print the events of a trace, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]

			var tl *tracelog.TraceLog
			var err error
			if source == eventstream.StdinSource {
				tl, err = tracelog.LoadReader(cmd.InOrStdin())
			} else {
				tl, err = tracelog.Load(source)
			}
			if err != nil {
				return err
			}

			if err := output.WriteEvents(cmd.OutOrStdout(), tl); err != nil {
				return fmt.Errorf("writing events: %w", err)
			}

			if check {
				if err := analyze.Validate(tl.Events); err != nil {
					return fmt.Errorf("%s: %w", source, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Fail if switch events do not alternate per task")

	return cmd
}
