package main

import (
	"fmt"

	"filesort/internal/watch"

	"github.com/spf13/cobra"
)

// NewSweepCmd creates the sweep command
func NewSweepCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sweep [directory]",
		Short: "Sort files already sitting in the incoming folder",
		Long:  `Sweep prepares the folder tree and dispatches every file currently in the incoming folder, without starting a watcher.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir := "."
			if len(args) > 0 {
				baseDir = args[0]
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Settings.DryRun = dryRun
			}

			monitor := watch.NewMonitor(cfg)
			if err := monitor.SelectDirectory(baseDir); err != nil {
				return err
			}

			outcomes, err := monitor.Sweep()
			if err != nil {
				return err
			}

			if len(outcomes) == 0 {
				fmt.Println(infoText("Incoming folder is empty, nothing to do"))
				return nil
			}

			moved := 0
			for _, outcome := range outcomes {
				reportOutcome(outcome)
				if outcome.Moved {
					moved++
				}
			}
			fmt.Println(successText(fmt.Sprintf("Done: %d of %d files moved", moved, len(outcomes))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log intended moves without touching files")

	return cmd
}
