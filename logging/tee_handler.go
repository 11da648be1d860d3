package logging

import (
	"context"
	"log/slog"
)

// teeHandler duplicates each record into every member handler. It backs the
// debug-mirror path, where router output is copied into a JSON file alongside
// normal delivery.
type teeHandler struct {
	handlers []slog.Handler
}

// newTeeHandler drops nil members and collapses trivial cases: no handlers
// become a noop, a single handler is returned as-is.
func newTeeHandler(handlers ...slog.Handler) slog.Handler {
	members := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			members = append(members, h)
		}
	}
	switch len(members) {
	case 0:
		return NoopHandler{}
	case 1:
		return members[0]
	}
	return &teeHandler{handlers: members}
}

// Enabled reports true when any member accepts the level.
func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle offers the record to every enabled member. Each member after the
// first receives its own clone so attr mutations cannot leak between them.
// The first member failure is reported after all members have been tried.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for idx, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if idx > 0 {
			rec = record.Clone()
		}
		if err := handler.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}

// TeeLogger duplicates log output from base into the provided handlers.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(newTeeHandler(handlers...))
	}
	all := append([]slog.Handler{base.Handler()}, handlers...)
	return slog.New(newTeeHandler(all...))
}

// TeeHandler combines handlers into one that delivers to each of them.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	return newTeeHandler(handlers...)
}
