package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"finelog/logging"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	ts        TEXT    NOT NULL,
	level     INTEGER NOT NULL,
	message   TEXT    NOT NULL,
	module    TEXT    NOT NULL DEFAULT '',
	grp       TEXT    NOT NULL DEFAULT '',
	attrs     TEXT    NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_records_level ON records(level);
`

// sqliteSink appends records to a sqlite database. Like the file sink it
// opens lazily, serializes appends with a mutex, and remembers a failed open.
type sqliteSink struct {
	mu      sync.Mutex
	path    string
	opened  bool
	openErr error
	db      *sql.DB
}

func newSQLiteSink(path string) *sqliteSink {
	return &sqliteSink{path: path}
}

func (s *sqliteSink) Append(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureOpen(ctx); err != nil {
		return err
	}

	module, group, attrs := splitAttrs(record)
	payload, err := json.Marshal(attrs)
	if err != nil {
		payload = []byte("{}")
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO records (ts, level, message, module, grp, attrs) VALUES (?, ?, ?, ?, ?, ?)`,
			ts.UTC().Format(time.RFC3339Nano), int(record.Level), record.Message, module, group, string(payload),
		)
		return err
	})
}

func (s *sqliteSink) ensureOpen(ctx context.Context) error {
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

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		s.openErr = fmt.Errorf("open sqlite destination: %w", err)
		return s.openErr
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		s.openErr = fmt.Errorf("configure sqlite destination: %w", err)
		return s.openErr
	}
	if _, err := db.ExecContext(ctx, recordsSchema); err != nil {
		_ = db.Close()
		s.openErr = fmt.Errorf("apply sqlite schema: %w", err)
		return s.openErr
	}

	s.db = db
	return nil
}

func (s *sqliteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	s.opened = false
	s.openErr = nil
	return err
}

// splitAttrs pulls the module and group identities out for dedicated columns
// and flattens the rest into a string map for the attrs payload.
func splitAttrs(record slog.Record) (module, group string, attrs map[string]string) {
	attrs = make(map[string]string, record.NumAttrs())
	record.Attrs(func(attr slog.Attr) bool {
		value := attr.Value.Resolve()
		switch attr.Key {
		case logging.FieldModule:
			if module == "" {
				module = value.String()
				return true
			}
		case logging.FieldGroup:
			if group == "" {
				group = value.String()
				return true
			}
		}
		attrs[attr.Key] = value.String()
		return true
	})
	return module, group, attrs
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
