package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"finelog/logging"
	"finelog/router"
	"finelog/verbosity"
)

func newEmitCommand(configFlag *string) *cobra.Command {
	var (
		module   string
		group    string
		option   string
		severity string
		message  string
		count    int
		disabled bool
		debugLog string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Send demonstration records through the gate, resolver, and router",
		RunE: func(cmd *cobra.Command, args []string) error {
			sev, err := parseSeverity(severity)
			if err != nil {
				return err
			}

			cfg, err := router.Load(*configFlag)
			if err != nil {
				return err
			}

			console, err := logging.New(logging.Options{Level: logLevel})
			if err != nil {
				return err
			}

			rt := router.New(console.Handler(), cfg)
			defer rt.Close()

			handler := slog.Handler(rt)
			if strings.TrimSpace(debugLog) != "" {
				file, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
				if err != nil {
					return fmt.Errorf("open debug log: %w", err)
				}
				defer file.Close()
				handler = logging.TeeHandler(handler, logging.NewJSONHandler(file, logging.LevelAll, true))
			}
			handler = logging.WithSessionID(handler, uuid.NewString())

			spec := verbosity.New(!disabled, map[string]map[string]verbosity.Severity{
				group: {option: sev},
			})
			emitter := verbosity.NewEmitter(slog.New(handler), module)

			for i := 1; i <= count; i++ {
				if err := emitter.Log(spec, group, option, message, logging.Int("n", i)); err != nil {
					return err
				}
			}

			if dropped := rt.Dropped(); dropped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d deliveries dropped\n", dropped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&module, "module", "demo", "Module identity stamped on records")
	cmd.Flags().StringVar(&group, "group", "solve", "Verbosity group name")
	cmd.Flags().StringVar(&option, "option", "step", "Verbosity option name")
	cmd.Flags().StringVar(&severity, "severity", "info", "Severity bound to the option (suppressed, info, warn, error, or an integer)")
	cmd.Flags().StringVar(&message, "message", "demonstration record", "Message text to emit")
	cmd.Flags().IntVar(&count, "count", 1, "Number of records to emit")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Emit against a disabled specifier (should produce nothing)")
	cmd.Flags().StringVar(&debugLog, "debug-log", "", "Mirror records as JSON into this file")
	cmd.Flags().StringVar(&logLevel, "log-level", "debug", "Console logger level")

	return cmd
}

func parseSeverity(value string) (verbosity.Severity, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "suppressed":
		return verbosity.Suppressed, nil
	case "info", "":
		return verbosity.Info, nil
	case "warn", "warning":
		return verbosity.Warn, nil
	case "error":
		return verbosity.Error, nil
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return verbosity.Numeric(n), nil
	}
	return verbosity.Severity{}, fmt.Errorf("unknown severity %q (expected suppressed, info, warn, error, or an integer)", value)
}
