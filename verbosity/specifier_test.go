package verbosity_test

import (
	"errors"
	"reflect"
	"testing"

	"finelog/verbosity"
)

func TestNewCopiesInput(t *testing.T) {
	source := map[string]map[string]verbosity.Severity{
		"solve": {"step": verbosity.Warn},
	}
	spec := verbosity.New(true, source)

	source["solve"]["step"] = verbosity.Suppressed
	source["extra"] = map[string]verbosity.Severity{"x": verbosity.Info}

	sev, err := spec.Lookup("solve", "step")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if sev.String() != verbosity.Warn.String() {
		t.Fatalf("expected caller mutation to be invisible, got %v", sev)
	}
	if _, err := spec.Lookup("extra", "x"); !errors.Is(err, verbosity.ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup for late-added group, got %v", err)
	}
}

func TestWithSeverityCopyOnWrite(t *testing.T) {
	original := specWith("step", verbosity.Warn)

	updated, err := original.WithSeverity("solve", "step", verbosity.Suppressed)
	if err != nil {
		t.Fatalf("WithSeverity returned error: %v", err)
	}

	if sev, _ := original.Lookup("solve", "step"); sev.String() != "warn" {
		t.Fatalf("original spec changed: %v", sev)
	}
	if sev, _ := updated.Lookup("solve", "step"); sev.String() != "suppressed" {
		t.Fatalf("updated spec not rebound: %v", sev)
	}

	if _, err := original.WithSeverity("solve", "missing", verbosity.Info); !errors.Is(err, verbosity.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestSpecNames(t *testing.T) {
	spec := verbosity.New(true, map[string]map[string]verbosity.Severity{
		"solve": {"step": verbosity.Warn, "branch": verbosity.Info},
		"parse": {"token": verbosity.Suppressed},
	})

	if got := spec.GroupNames(); !reflect.DeepEqual(got, []string{"parse", "solve"}) {
		t.Fatalf("GroupNames() = %v", got)
	}
	if got := spec.OptionNames("solve"); !reflect.DeepEqual(got, []string{"branch", "step"}) {
		t.Fatalf("OptionNames() = %v", got)
	}
	if got := spec.OptionNames("missing"); got != nil {
		t.Fatalf("OptionNames for unknown group = %v", got)
	}
}

func TestFromStruct(t *testing.T) {
	type Solve struct {
		Step      verbosity.Severity
		StepTrace verbosity.Severity
		Renamed   verbosity.Severity `verbosity:"other"`
		ignored   verbosity.Severity //nolint:unused
		NotASev   int
	}
	type aggregate struct {
		Solve   Solve
		Comment string
	}

	agg := aggregate{Solve: Solve{
		Step:      verbosity.Warn,
		StepTrace: verbosity.Numeric(-4),
		Renamed:   verbosity.Info,
	}}

	spec, err := verbosity.FromStruct(true, agg)
	if err != nil {
		t.Fatalf("FromStruct returned error: %v", err)
	}
	if !spec.Enabled() {
		t.Fatal("expected enabled spec")
	}
	if sev, err := spec.Lookup("solve", "step"); err != nil || sev.String() != "warn" {
		t.Fatalf("Lookup(solve, step) = %v, %v", sev, err)
	}
	if sev, err := spec.Lookup("solve", "step_trace"); err != nil || sev.String() != "numeric(-4)" {
		t.Fatalf("Lookup(solve, step_trace) = %v, %v", sev, err)
	}
	if sev, err := spec.Lookup("solve", "other"); err != nil || sev.String() != "info" {
		t.Fatalf("Lookup(solve, other) = %v, %v", sev, err)
	}
	if _, err := spec.Lookup("solve", "not_a_sev"); !errors.Is(err, verbosity.ErrUnknownOption) {
		t.Fatalf("expected non-severity field to be ignored, got %v", err)
	}
}

func TestFromStructRejectsNonAggregates(t *testing.T) {
	if _, err := verbosity.FromStruct(true, 42); err == nil {
		t.Fatal("expected error for non-struct aggregate")
	}
	if _, err := verbosity.FromStruct(true, struct{ X int }{}); err == nil {
		t.Fatal("expected error for aggregate without severity options")
	}
	var nilPtr *struct{ X int }
	if _, err := verbosity.FromStruct(true, nilPtr); err == nil {
		t.Fatal("expected error for nil aggregate")
	}
}
