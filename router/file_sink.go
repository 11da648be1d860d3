package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"finelog/logging"
)

// fileSink appends records to a single file as shaped JSON lines. Appends are
// serialized with a mutex; an advisory flock on a sidecar lock file keeps a
// second process from interleaving writes into the same destination. The file
// opens lazily on first append, and an open failure sticks: subsequent
// appends report it without retrying.
type fileSink struct {
	mu      sync.Mutex
	path    string
	opened  bool
	openErr error
	file    *os.File
	lock    *flock.Flock
	handler slog.Handler
}

func newFileSink(path string) *fileSink {
	return &fileSink{path: path}
}

func (s *fileSink) Append(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.handler.Handle(ctx, record)
}

func (s *fileSink) ensureOpen() error {
	if s.opened {
		return s.openErr
	}
	s.opened = true

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.openErr = fmt.Errorf("ensure destination directory: %w", err)
			return s.openErr
		}
	}

	lock := flock.New(s.path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		s.openErr = fmt.Errorf("lock destination %s: %w", s.path, err)
		return s.openErr
	}
	if !locked {
		s.openErr = fmt.Errorf("destination %s is held by another writer", s.path)
		return s.openErr
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		_ = lock.Unlock()
		s.openErr = fmt.Errorf("open destination %s: %w", s.path, err)
		return s.openErr
	}

	s.lock = lock
	s.file = file
	s.handler = logging.NewJSONHandler(file, logging.LevelAll, false)
	return nil
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	if s.file != nil {
		if err := s.file.Close(); err != nil {
			errs = append(errs, err)
		}
		s.file = nil
		s.handler = nil
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
		s.lock = nil
	}
	s.opened = false
	s.openErr = nil
	return errors.Join(errs...)
}
