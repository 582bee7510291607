package main

import (
	"filesort/internal/config"
	"filesort/internal/log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
	logFile string
	jsonLog bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "filesort",
		Short:   "Sort incoming files by extension and keep dated backups",
		Version: version,
		Long: `Filesort watches an incoming folder and routes each new file into a
destination subfolder chosen by its extension, then retains a dated
backup copy under the archive folder.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// init writes a fresh config, and help/completion only
			// describe the CLI; none of them need a config to exist
			switch cmd.Name() {
			case "init", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
				return nil
			}

			var err error
			if cfgFile != "" {
				cfg, err = config.LoadFile(cfgFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			var opts []log.Option
			if logFile != "" {
				opts = append(opts, log.WithFile(logFile))
			} else if cfg.Logging.File != "" {
				opts = append(opts, log.WithFile(cfg.Logging.File))
			}
			if jsonLog || cfg.Logging.JSON {
				opts = append(opts, log.WithJSON())
			}
			if len(opts) > 0 {
				log.Configure(opts...)
			}
			log.SetDebug(debug)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/filesort/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "also write log records to this file")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "emit JSON log records")

	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewSweepCmd())
	rootCmd.AddCommand(NewInitCmd())

	return rootCmd
}
