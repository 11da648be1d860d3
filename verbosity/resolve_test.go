package verbosity_test

import (
	"errors"
	"log/slog"
	"testing"

	"finelog/verbosity"
)

func specWith(option string, sev verbosity.Severity) *verbosity.Spec {
	return verbosity.New(true, map[string]map[string]verbosity.Severity{
		"solve": {option: sev},
	})
}

func TestResolveMappingIsTotal(t *testing.T) {
	tests := []struct {
		name      string
		severity  verbosity.Severity
		wantSkip  bool
		wantEmit  bool
		wantLevel slog.Level
	}{
		{"suppressed skips", verbosity.Suppressed, true, false, 0},
		{"info emits at info", verbosity.Info, false, true, slog.LevelInfo},
		{"warn emits at warn", verbosity.Warn, false, true, slog.LevelWarn},
		{"error emits at error", verbosity.Error, false, true, slog.LevelError},
		{"numeric emits at its ordinal", verbosity.Numeric(7), false, true, slog.Level(7)},
		{"negative numeric emits", verbosity.Numeric(-1000), false, true, slog.Level(-1000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			action, err := verbosity.Resolve(specWith("step", tc.severity), "solve", "step")
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if action.Skips() != tc.wantSkip {
				t.Fatalf("Skips() = %t, want %t", action.Skips(), tc.wantSkip)
			}
			if action.Emits() != tc.wantEmit {
				t.Fatalf("Emits() = %t, want %t", action.Emits(), tc.wantEmit)
			}
			if tc.wantEmit && action.Level() != tc.wantLevel {
				t.Fatalf("Level() = %v, want %v", action.Level(), tc.wantLevel)
			}
		})
	}
}

func TestResolveCustomAction(t *testing.T) {
	ran := false
	spec := specWith("step", verbosity.Custom(func() error {
		ran = true
		return nil
	}))

	action, err := verbosity.Resolve(spec, "solve", "step")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	callback, ok := action.Callback()
	if !ok {
		t.Fatal("expected a custom callback action")
	}
	if action.Emits() || action.Skips() {
		t.Fatal("custom action should neither emit nor skip")
	}
	if ran {
		t.Fatal("resolution must not run the callback")
	}
	if err := callback(); err != nil {
		t.Fatalf("callback returned error: %v", err)
	}
	if !ran {
		t.Fatal("expected callback to run when invoked")
	}
}

func TestResolveUnknownNames(t *testing.T) {
	spec := specWith("step", verbosity.Warn)

	if _, err := verbosity.Resolve(spec, "nope", "step"); !errors.Is(err, verbosity.ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
	if _, err := verbosity.Resolve(spec, "solve", "nope"); !errors.Is(err, verbosity.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}
