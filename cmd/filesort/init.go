package main

import (
	"fmt"
	"os"
	"path/filepath"

	"filesort/internal/config"

	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".config", "filesort", "config.yaml")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			starter := config.Default()
			starter.Extensions = map[string]string{
				".jpg": "images",
				".png": "images",
				".pdf": "documents",
				".txt": "documents",
			}
			starter.Ignore = []string{"*.tmp", "*.part", "*.download"}

			if err := config.Save(starter, path); err != nil {
				return err
			}
			fmt.Println(successText(fmt.Sprintf("Wrote starter config to %s", path)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
