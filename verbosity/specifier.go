package verbosity

import (
	"errors"
	"fmt"
	"sort"
)

// Lookup failures are programmer errors: the group/option namespace is fixed
// at construction, so an unknown name means the call site and the aggregate
// disagree. They are surfaced immediately and never retried.
var (
	ErrUnknownGroup  = errors.New("unknown verbosity group")
	ErrUnknownOption = errors.New("unknown verbosity option")
)

// Specifier is the by-name lookup contract a user aggregate must satisfy.
// Enabled must be immutable for the life of the value: emission short-circuits
// on it before any lookup or message realization happens.
type Specifier interface {
	Enabled() bool
	Lookup(group, option string) (Severity, error)
}

// Spec is an immutable map-backed Specifier. The zero value is disabled and
// empty; build real ones with New, FromStruct, or WithSeverity.
type Spec struct {
	enabled bool
	groups  map[string]map[string]Severity
}

// New builds a Spec from a two-level group/option map. The map is deep-copied
// so later caller mutations cannot race against concurrent readers.
func New(enabled bool, groups map[string]map[string]Severity) *Spec {
	copied := make(map[string]map[string]Severity, len(groups))
	for group, options := range groups {
		inner := make(map[string]Severity, len(options))
		for option, sev := range options {
			inner[option] = sev
		}
		copied[group] = inner
	}
	return &Spec{enabled: enabled, groups: copied}
}

// Enabled reports whether emission against this spec does anything at all.
func (s *Spec) Enabled() bool {
	return s != nil && s.enabled
}

// Lookup resolves the severity bound to group/option.
func (s *Spec) Lookup(group, option string) (Severity, error) {
	if s == nil {
		return Severity{}, fmt.Errorf("lookup group %q: %w", group, ErrUnknownGroup)
	}
	options, ok := s.groups[group]
	if !ok {
		return Severity{}, fmt.Errorf("lookup group %q: %w", group, ErrUnknownGroup)
	}
	sev, ok := options[option]
	if !ok {
		return Severity{}, fmt.Errorf("lookup option %q in group %q: %w", option, group, ErrUnknownOption)
	}
	return sev, nil
}

// WithSeverity returns a copy of the spec with one option rebound. This is
// the reconfiguration path for live systems: readers keep resolving against
// the old value while the caller swaps in the copy.
func (s *Spec) WithSeverity(group, option string, sev Severity) (*Spec, error) {
	if _, err := s.Lookup(group, option); err != nil {
		return nil, err
	}
	next := New(s.enabled, s.groups)
	next.groups[group][option] = sev
	return next, nil
}

// GroupNames returns the spec's group names in sorted order.
func (s *Spec) GroupNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OptionNames returns the option names within a group in sorted order.
func (s *Spec) OptionNames(group string) []string {
	if s == nil {
		return nil
	}
	options, ok := s.groups[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
