// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
)

// Captured is one record retained by a Recorder, with attrs flattened to
// strings for easy assertions.
type Captured struct {
	Level   slog.Level
	Message string
	Source  string
	Attrs   map[string]string
}

// Recorder is a slog.Handler that accepts every level and retains each
// record it sees. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	records  []Captured
	failWith error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewFailingRecorder returns a recorder whose Handle always reports err while
// still retaining records, for exercising delivery-failure paths.
func NewFailingRecorder(err error) *Recorder {
	return &Recorder{failWith: err}
}

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		attrs[attr.Key] = attr.Value.Resolve().String()
		return true
	})

	var source string
	if src := recordSource(record); src != nil && src.File != "" {
		source = fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line)
	}

	r.mu.Lock()
	r.records = append(r.records, Captured{
		Level:   record.Level,
		Message: record.Message,
		Source:  source,
		Attrs:   attrs,
	})
	r.mu.Unlock()
	return r.failWith
}

// WithAttrs returns a view that funnels records back into the parent so
// assertions see captures from clones too.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedRecorder{parent: r, attrs: append([]slog.Attr(nil), attrs...)}
}

func (r *Recorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of everything captured so far.
func (r *Recorder) Records() []Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Captured, len(r.records))
	copy(out, r.records)
	return out
}

// Len reports how many records have been captured.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// sharedRecorder funnels records from WithAttrs clones back into the parent.
type sharedRecorder struct {
	parent *Recorder
	attrs  []slog.Attr
}

func (s *sharedRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (s *sharedRecorder) Handle(ctx context.Context, record slog.Record) error {
	record = record.Clone()
	record.AddAttrs(s.attrs...)
	return s.parent.Handle(ctx, record)
}

func (s *sharedRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sharedRecorder{parent: s.parent, attrs: append(append([]slog.Attr(nil), s.attrs...), attrs...)}
}

func (s *sharedRecorder) WithGroup(string) slog.Handler { return s }

// recordSource mirrors slog.Record.Source (added in a newer Go release):
// it resolves record.PC to a *slog.Source, or nil when no PC is set.
func recordSource(record slog.Record) *slog.Source {
	if record.PC == 0 {
		return nil
	}
	frames := runtime.CallersFrames([]uintptr{record.PC})
	frame, _ := frames.Next()
	return &slog.Source{Function: frame.Function, File: frame.File, Line: frame.Line}
}
