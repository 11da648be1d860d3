package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finelog/logging"
	"finelog/router"
)

func newPruneCommand() *cobra.Command {
	var (
		dir     string
		pattern string
		maxDays int
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove aged durable destination files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("a directory is required (--dir)")
			}
			if maxDays <= 0 {
				return fmt.Errorf("--max-age-days must be positive")
			}

			logger, err := logging.New(logging.Options{Level: "info"})
			if err != nil {
				return err
			}

			removed := router.Prune(logger, dir, pattern, time.Duration(maxDays)*24*time.Hour)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory holding durable destination files")
	cmd.Flags().StringVar(&pattern, "pattern", "*.log", "Filename pattern to match")
	cmd.Flags().IntVar(&maxDays, "max-age-days", 0, "Remove files older than this many days")

	return cmd
}
