package verbosity

import "log/slog"

type actionKind uint8

const (
	actionSkip actionKind = iota
	actionEmit
	actionCustom
)

// Action is the outcome of resolving a category: drop the call, emit at a
// level, or run a custom callback instead of logging. Resolving to skip is
// the expected silent outcome for a suppressed category, never an error.
type Action struct {
	kind     actionKind
	level    slog.Level
	callback func() error
}

// Skips reports whether the call should be dropped without realizing the
// message.
func (a Action) Skips() bool { return a.kind == actionSkip }

// Emits reports whether the call should realize and forward the message.
func (a Action) Emits() bool { return a.kind == actionEmit }

// Level is the slog ordinal to emit at; only meaningful when Emits is true.
func (a Action) Level() slog.Level { return a.level }

// Callback returns the custom callback and whether one is set.
func (a Action) Callback() (func() error, bool) {
	if a.kind != actionCustom {
		return nil, false
	}
	return a.callback, true
}

// Resolve maps a (specifier, group, option) triple to its emission action.
// Callers must gate on Specifier.Enabled first; Resolve assumes an enabled
// specifier and performs the lookup unconditionally. Unknown names surface as
// errors wrapping ErrUnknownGroup or ErrUnknownOption.
func Resolve(spec Specifier, group, option string) (Action, error) {
	sev, err := spec.Lookup(group, option)
	if err != nil {
		return Action{}, err
	}
	switch sev.kind {
	case kindInfo, kindWarn, kindError, kindNumeric:
		return Action{kind: actionEmit, level: sev.level}, nil
	case kindCustom:
		return Action{kind: actionCustom, callback: sev.callback}, nil
	default:
		return Action{kind: actionSkip}, nil
	}
}
