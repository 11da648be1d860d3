package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldModule is the standardized structured logging key for the
	// originating module or component identity.
	FieldModule = "module"
	// FieldGroup is the standardized structured logging key for the logical
	// verbosity group a record was emitted under.
	FieldGroup = "group"
	// FieldOption is the standardized structured logging key for the
	// verbosity option that selected the record's severity.
	FieldOption = "option"
	// FieldSessionID is the standardized structured logging key for
	// per-run session identifiers.
	FieldSessionID = "session_id"
)

func String(key string, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
