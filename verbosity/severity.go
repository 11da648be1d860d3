package verbosity

import (
	"fmt"
	"log/slog"
)

type severityKind uint8

const (
	kindSuppressed severityKind = iota
	kindInfo
	kindWarn
	kindError
	kindNumeric
	kindCustom
)

// Severity decides whether and how a category's messages reach the logging
// boundary. Exactly one variant is active per value. Numeric severities
// accept any integer, including negative (finer than debug) and values above
// the error ordinal; they map directly onto slog levels.
type Severity struct {
	kind     severityKind
	level    slog.Level
	callback func() error
}

var (
	// Suppressed silences the category entirely.
	Suppressed = Severity{kind: kindSuppressed}
	// Info emits at the info ordinal.
	Info = Severity{kind: kindInfo, level: slog.LevelInfo}
	// Warn emits at the warn ordinal.
	Warn = Severity{kind: kindWarn, level: slog.LevelWarn}
	// Error emits at the error ordinal.
	Error = Severity{kind: kindError, level: slog.LevelError}
)

// Numeric binds the category to an arbitrary slog ordinal.
func Numeric(level int) Severity {
	return Severity{kind: kindNumeric, level: slog.Level(level)}
}

// Custom replaces emission with a callback. The message producer never runs
// for a custom category; the callback's error, if any, is handed back to the
// caller untouched.
func Custom(callback func() error) Severity {
	return Severity{kind: kindCustom, callback: callback}
}

// Level reports the slog ordinal a severity emits at. The bool is false for
// Suppressed and Custom, which never emit.
func (s Severity) Level() (slog.Level, bool) {
	switch s.kind {
	case kindInfo, kindWarn, kindError, kindNumeric:
		return s.level, true
	}
	return 0, false
}

func (s Severity) String() string {
	switch s.kind {
	case kindSuppressed:
		return "suppressed"
	case kindInfo:
		return "info"
	case kindWarn:
		return "warn"
	case kindError:
		return "error"
	case kindNumeric:
		return fmt.Sprintf("numeric(%d)", int(s.level))
	case kindCustom:
		return "custom"
	}
	return "unknown"
}
