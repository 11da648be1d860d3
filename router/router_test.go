package router_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finelog/internal/testsupport"
	"finelog/logging"
	"finelog/router"
)

func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("parse line %q: %v", scanner.Text(), err)
		}
		lines = append(lines, entry)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return lines
}

func warnRecord(msg string) slog.Record {
	return slog.NewRecord(time.Now(), slog.LevelWarn, msg, 0)
}

func TestRouterDurableOnly(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "warn.log")
	cfg := router.Default()
	cfg.Warn = router.SinkConfig{Console: false, Destination: dest, Driver: router.DriverFile}

	console := testsupport.NewRecorder()
	rt := router.New(console, cfg)
	defer rt.Close()

	if err := rt.Handle(context.Background(), warnRecord("quiet")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if console.Len() != 0 {
		t.Fatalf("console received %d records with console delivery off", console.Len())
	}
	lines := readJSONLines(t, dest)
	if len(lines) != 1 {
		t.Fatalf("expected one durable line, got %d", len(lines))
	}
	if lines[0]["msg"] != "quiet" {
		t.Fatalf("durable msg = %v", lines[0]["msg"])
	}
}

func TestRouterFansOutToBoth(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "warn.log")
	cfg := router.Default()
	cfg.Warn = router.SinkConfig{Console: true, Destination: dest, Driver: router.DriverFile}

	console := testsupport.NewRecorder()
	rt := router.New(console, cfg)
	defer rt.Close()

	if err := rt.Handle(context.Background(), warnRecord("both")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if console.Len() != 1 {
		t.Fatalf("console received %d records, want 1", console.Len())
	}
	if lines := readJSONLines(t, dest); len(lines) != 1 {
		t.Fatalf("durable received %d records, want 1", len(lines))
	}
	if rt.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", rt.Dropped())
	}
}

func TestRouterFailureIsolation(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	// directory creation under a regular file must fail
	dest := filepath.Join(blocker, "sub", "warn.log")

	cfg := router.Default()
	cfg.Warn = router.SinkConfig{Console: true, Destination: dest, Driver: router.DriverFile}

	console := testsupport.NewRecorder()
	rt := router.New(console, cfg)
	defer rt.Close()

	if err := rt.Handle(context.Background(), warnRecord("still delivered")); err != nil {
		t.Fatalf("Handle must not propagate sink failures, got %v", err)
	}

	if console.Len() != 1 {
		t.Fatalf("console received %d records, want 1", console.Len())
	}
	if rt.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", rt.Dropped())
	}
}

func TestRouterConsoleFailureDoesNotBlockDurable(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "warn.log")
	cfg := router.Default()
	cfg.Warn = router.SinkConfig{Console: true, Destination: dest, Driver: router.DriverFile}

	console := testsupport.NewFailingRecorder(os.ErrClosed)
	rt := router.New(console, cfg)
	defer rt.Close()

	if err := rt.Handle(context.Background(), warnRecord("durable wins")); err != nil {
		t.Fatalf("Handle must not propagate console failures, got %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if lines := readJSONLines(t, dest); len(lines) != 1 {
		t.Fatalf("durable received %d records, want 1", len(lines))
	}
	if rt.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", rt.Dropped())
	}
}

func TestRouterNumericFallsBackToConsole(t *testing.T) {
	console := testsupport.NewRecorder()
	rt := router.New(console, router.Default())
	defer rt.Close()

	rec := slog.NewRecord(time.Now(), slog.Level(-1000), "deep trace", 0)
	if err := rt.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	records := console.Records()
	if len(records) != 1 {
		t.Fatalf("expected fallback console delivery, got %d records", len(records))
	}
	if records[0].Level != slog.Level(-1000) {
		t.Fatalf("level = %v", records[0].Level)
	}
}

func TestRouterFallbackBypassesConsoleLevelGate(t *testing.T) {
	var buf bytes.Buffer
	console := logging.NewConsoleHandler(&buf, logging.ConsoleOptions{})

	rt := router.New(console, router.Default())
	defer rt.Close()

	rec := slog.NewRecord(time.Now(), slog.Level(-1000), "deep trace", 0)
	if err := rt.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if buf.Len() == 0 {
		t.Fatal("fallback record never reached the console")
	}
	if !strings.Contains(buf.String(), "deep trace") {
		t.Fatalf("console output missing fallback message: %q", buf.String())
	}
	if rt.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", rt.Dropped())
	}
}

func TestRouterFallbackIgnoresConsoleLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	console := logging.NewConsoleHandler(&buf, logging.ConsoleOptions{})

	cfg := router.Default()
	cfg.ConsoleLevel = "error"
	rt := router.New(console, cfg)
	defer rt.Close()

	rec := slog.NewRecord(time.Now(), slog.Level(2), "between ordinals", 0)
	if err := rt.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "between ordinals") {
		t.Fatalf("console_level must not filter fallback records, got %q", buf.String())
	}
	if rt.Dropped() != 0 {
		t.Fatalf("dropped = %d, want 0", rt.Dropped())
	}
}

func TestRouterFallbackWithoutConsoleCountsDrop(t *testing.T) {
	rt := router.New(nil, router.Default())
	defer rt.Close()

	rec := slog.NewRecord(time.Now(), slog.Level(-1000), "nowhere to go", 0)
	if err := rt.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if rt.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", rt.Dropped())
	}
}

func TestRouterFallbackDisabledDrops(t *testing.T) {
	cfg := router.Default()
	cfg.FallbackConsole = false

	console := testsupport.NewRecorder()
	rt := router.New(console, cfg)
	defer rt.Close()

	rec := slog.NewRecord(time.Now(), slog.Level(2), "between ordinals", 0)
	if err := rt.Handle(context.Background(), rec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if console.Len() != 0 {
		t.Fatalf("console received %d records with fallback disabled", console.Len())
	}
	if rt.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", rt.Dropped())
	}
}

func TestRouterConsoleLevelOverride(t *testing.T) {
	cfg := router.Default()
	cfg.ConsoleLevel = "error"

	console := testsupport.NewRecorder()
	rt := router.New(console, cfg)
	defer rt.Close()

	if err := rt.Handle(context.Background(), warnRecord("filtered")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	errRec := slog.NewRecord(time.Now(), slog.LevelError, "kept", 0)
	if err := rt.Handle(context.Background(), errRec); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	records := console.Records()
	if len(records) != 1 || records[0].Message != "kept" {
		t.Fatalf("unexpected console records: %+v", records)
	}
}

func TestRouterWithAttrsStampsEveryDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "warn.log")
	cfg := router.Default()
	cfg.Warn = router.SinkConfig{Console: true, Destination: dest, Driver: router.DriverFile}

	console := testsupport.NewRecorder()
	rt := router.New(console, cfg)
	defer rt.Close()

	stamped := rt.WithAttrs([]slog.Attr{slog.String("run", "r1")})
	if err := stamped.Handle(context.Background(), warnRecord("tagged")); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	records := console.Records()
	if len(records) != 1 || records[0].Attrs["run"] != "r1" {
		t.Fatalf("console missing stamped attr: %+v", records)
	}
	lines := readJSONLines(t, dest)
	if len(lines) != 1 || lines[0]["run"] != "r1" {
		t.Fatalf("durable missing stamped attr: %+v", lines)
	}
}
