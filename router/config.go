package router

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Sample returns the annotated sample configuration file.
func Sample() string {
	return sampleConfig
}

// Drivers recognized for durable destinations.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// SinkConfig is one severity's routing rule: whether matching records reach
// the upstream console logger, and where (if anywhere) they are durably
// appended.
type SinkConfig struct {
	Console     bool   `toml:"console"`
	Destination string `toml:"destination"`
	Driver      string `toml:"driver"`
}

// Durable reports whether the rule has a durable destination configured.
func (s SinkConfig) Durable() bool {
	return strings.TrimSpace(s.Destination) != ""
}

// Config encapsulates router construction parameters.
type Config struct {
	// FallbackConsole delivers records outside the three named severities to
	// the console instead of dropping them.
	FallbackConsole bool `toml:"fallback_console"`
	// ConsoleLevel optionally tightens the upstream console handler
	// ("debug", "info", "warn", "error"). Empty leaves it untouched.
	ConsoleLevel string `toml:"console_level"`

	Info  SinkConfig `toml:"info"`
	Warn  SinkConfig `toml:"warn"`
	Error SinkConfig `toml:"error"`
}

// Default returns a Config that forwards everything to the console and keeps
// nothing durable.
func Default() Config {
	return Config{
		FallbackConsole: true,
		Info:            SinkConfig{Console: true},
		Warn:            SinkConfig{Console: true},
		Error:           SinkConfig{Console: true},
	}
}

// Load parses and validates a configuration file. A missing file yields the
// defaults. Destination paths come back expanded and normalized.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults
		case err != nil:
			return Config{}, fmt.Errorf("open router config: %w", err)
		default:
			defer file.Close()
			decoder := toml.NewDecoder(file)
			if err := decoder.Decode(&cfg); err != nil {
				return Config{}, fmt.Errorf("parse router config: %w", err)
			}
		}
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	for _, rule := range []struct {
		name string
		sink *SinkConfig
	}{
		{"info", &c.Info},
		{"warn", &c.Warn},
		{"error", &c.Error},
	} {
		sink := rule.sink
		sink.Driver = strings.ToLower(strings.TrimSpace(sink.Driver))
		sink.Destination = strings.TrimSpace(sink.Destination)
		if sink.Destination != "" {
			expanded, err := expandPath(sink.Destination)
			if err != nil {
				return fmt.Errorf("%s.destination: %w", rule.name, err)
			}
			sink.Destination = expanded
			if sink.Driver == "" {
				sink.Driver = DriverFile
			}
		}
	}
	c.ConsoleLevel = strings.ToLower(strings.TrimSpace(c.ConsoleLevel))
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, rule := range []struct {
		name string
		sink SinkConfig
	}{
		{"info", c.Info},
		{"warn", c.Warn},
		{"error", c.Error},
	} {
		switch rule.sink.Driver {
		case "", DriverFile, DriverSQLite:
		default:
			return fmt.Errorf("%s.driver: unsupported value %q (expected %q or %q)", rule.name, rule.sink.Driver, DriverFile, DriverSQLite)
		}
		if rule.sink.Driver != "" && !rule.sink.Durable() {
			return fmt.Errorf("%s.driver: set without a destination", rule.name)
		}
	}
	switch c.ConsoleLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("console_level: unsupported value %q", c.ConsoleLevel)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
