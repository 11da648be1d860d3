package verbosity

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"finelog/logging"
)

// Emitter forwards resolved messages to an explicitly passed slog handle.
// It is stateless and safe for concurrent use; construct one per module and
// share it freely.
type Emitter struct {
	logger *slog.Logger
	module string
}

// NewEmitter builds an emitter that stamps records with the given module
// identity. A nil logger routes to a no-op handle.
func NewEmitter(logger *slog.Logger, module string) *Emitter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Emitter{logger: logger, module: module}
}

// Log emits a literal message for the named category. A disabled specifier
// short-circuits before resolution; the whole call costs one branch on the
// immutable enabled flag.
func (e *Emitter) Log(spec Specifier, group, option, msg string, attrs ...slog.Attr) error {
	if spec == nil || !spec.Enabled() {
		return nil
	}
	return e.emit(spec, group, option, nil, msg, attrs)
}

// LogFunc emits a lazily produced message for the named category. The
// producer runs at most once, and only when the category resolves to an
// emitting severity; disabled specifiers, suppressed categories, and custom
// actions never invoke it.
func (e *Emitter) LogFunc(spec Specifier, group, option string, produce func() string, attrs ...slog.Attr) error {
	if spec == nil || !spec.Enabled() {
		return nil
	}
	return e.emit(spec, group, option, produce, "", attrs)
}

func (e *Emitter) emit(spec Specifier, group, option string, produce func() string, literal string, attrs []slog.Attr) error {
	action, err := Resolve(spec, group, option)
	if err != nil {
		return err
	}
	if action.Skips() {
		return nil
	}
	if callback, ok := action.Callback(); ok {
		// The callback runs in place of logging. Its error is outside the
		// logging contract: hand it back untouched.
		if callback == nil {
			return nil
		}
		return callback()
	}

	ctx := context.Background()
	handler := e.logger.Handler()
	if !handler.Enabled(ctx, action.Level()) {
		return nil
	}

	text := literal
	if produce != nil {
		text = produce()
	}

	// Caller PC: skip runtime.Callers, emit, and the Log/LogFunc wrapper.
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])

	record := slog.NewRecord(time.Now(), action.Level(), text, pcs[0])
	if e.module != "" {
		record.AddAttrs(slog.String(logging.FieldModule, e.module))
	}
	record.AddAttrs(
		slog.String(logging.FieldGroup, group),
		slog.String(logging.FieldOption, option),
	)
	record.AddAttrs(attrs...)

	return handler.Handle(ctx, record)
}
