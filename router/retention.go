package router

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finelog/logging"
)

// Prune removes durable destination files under dir that match pattern and
// are older than maxAge. A non-positive maxAge disables pruning. Returns the
// number of files removed; individual removal failures are logged and
// skipped, never fatal.
func Prune(logger *slog.Logger, dir, pattern string, maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return 0
	}
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if pat := strings.TrimSpace(pattern); pat != "" {
			matched, err := filepath.Match(pat, name)
			if err != nil || !matched {
				continue
			}
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if err := os.Remove(fullPath); err != nil {
			if logger != nil {
				logger.Warn("retention remove failed; file remains",
					logging.String("path", fullPath),
					logging.Error(err),
				)
			}
			continue
		}
		removed++
		if logger != nil {
			logger.Info("destination pruned", logging.String("path", fullPath))
		}
	}
	return removed
}
