package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"filesort/internal/watch"
	"filesort/pkg/types"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		poll     bool
		interval int
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch the incoming folder and sort new files",
		Long: `Watch selects a base directory, prepares the incoming/sorted/archive
folder tree underneath it, and monitors the incoming folder until
interrupted. Each newly created file is routed by extension and a dated
backup copy is kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir := "."
			if len(args) > 0 {
				baseDir = args[0]
			}

			if cmd.Flags().Changed("poll") {
				cfg.Watch.Poll = poll
			}
			if cmd.Flags().Changed("interval") {
				cfg.Watch.Interval = interval
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Settings.DryRun = dryRun
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			monitor := watch.NewMonitor(cfg)
			if err := monitor.SelectDirectory(baseDir); err != nil {
				return err
			}
			monitor.SetCallback(reportOutcome)

			if cfg.Settings.DryRun {
				fmt.Println(infoText("Running in dry-run mode, no files will be moved"))
			}

			if err := monitor.Start(); err != nil {
				return err
			}

			status := monitor.Status()
			fmt.Println(infoText(fmt.Sprintf("Watching %s, press Ctrl+C to stop", status.BaseDirectory)))

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			fmt.Println(infoText("\nStopping monitor..."))
			monitor.Stop()

			status = monitor.Status()
			fmt.Println(successText(fmt.Sprintf("Monitor stopped, %d files moved", status.FilesMoved)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&poll, "poll", false, "use the polling watch source instead of fsnotify")
	cmd.Flags().IntVar(&interval, "interval", 2, "poll interval in seconds")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log intended moves without touching files")

	return cmd
}

func reportOutcome(outcome types.MoveOutcome) {
	switch {
	case outcome.Error != nil:
		fmt.Println(errorText(fmt.Sprintf("Failed %s: %v", outcome.SourcePath, outcome.Error)))
	case outcome.Moved:
		fmt.Println(successText(fmt.Sprintf("Moved %s -> %s", outcome.SourcePath, outcome.DestinationPath)))
	case outcome.Skipped && outcome.Reason == types.SkipDryRun:
		fmt.Println(infoText(fmt.Sprintf("Would move %s -> %s", outcome.SourcePath, outcome.DestinationPath)))
	case outcome.Skipped:
		fmt.Println(warningText(fmt.Sprintf("Skipped %s (%s)", outcome.SourcePath, outcome.Reason)))
	}
}
