package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"finelog/router"
)

func newCheckCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the router configuration and show the routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := router.Load(*configFlag)
			if err != nil {
				return err
			}

			titler := cases.Title(language.English)
			rows := make([][]string, 0, 4)
			for _, entry := range []struct {
				name string
				sink router.SinkConfig
			}{
				{"info", cfg.Info},
				{"warn", cfg.Warn},
				{"error", cfg.Error},
			} {
				destination := entry.sink.Destination
				driver := entry.sink.Driver
				if destination == "" {
					destination = "-"
					driver = "-"
				}
				rows = append(rows, []string{
					titler.String(entry.name),
					strconv.FormatBool(entry.sink.Console),
					destination,
					driver,
				})
			}
			rows = append(rows, []string{
				"Other",
				strconv.FormatBool(cfg.FallbackConsole),
				"-",
				"-",
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Severity", "Console", "Destination", "Driver"}, rows))
			if cfg.ConsoleLevel != "" {
				fmt.Fprintf(out, "Console level override: %s\n", cfg.ConsoleLevel)
			}
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}
}
