package verbosity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

var severityType = reflect.TypeOf(Severity{})

// FromStruct builds a Spec from a user aggregate: each exported struct field
// that is itself a struct becomes a group, and each Severity field within it
// becomes an option. Names are lowered to snake_case; a `verbosity:"name"`
// tag overrides the derived name. Fields that are neither groups nor
// severities are ignored, so aggregates can carry unrelated state.
func FromStruct(enabled bool, aggregate any) (*Spec, error) {
	v := reflect.ValueOf(aggregate)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, errors.New("verbosity: nil aggregate")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("verbosity: aggregate must be a struct, got %T", aggregate)
	}

	groups := make(map[string]map[string]Severity)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := v.Field(i)
		for fv.Kind() == reflect.Pointer && !fv.IsNil() {
			fv = fv.Elem()
		}
		if fv.Kind() != reflect.Struct || fv.Type() == severityType {
			continue
		}

		options := readOptions(fv)
		if len(options) == 0 {
			continue
		}
		groups[fieldKey(field)] = options
	}

	if len(groups) == 0 {
		return nil, errors.New("verbosity: aggregate declares no severity options")
	}
	return &Spec{enabled: enabled, groups: groups}, nil
}

func readOptions(group reflect.Value) map[string]Severity {
	t := group.Type()
	options := make(map[string]Severity)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Type != severityType {
			continue
		}
		options[fieldKey(field)] = group.Field(i).Interface().(Severity)
	}
	return options
}

func fieldKey(field reflect.StructField) string {
	if tag := field.Tag.Get("verbosity"); tag != "" {
		return tag
	}
	return snakeCase(field.Name)
}

func snakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	prevUpper := true
	for _, r := range name {
		if unicode.IsUpper(r) {
			if !prevUpper {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUpper = true
			continue
		}
		b.WriteRune(r)
		prevUpper = false
	}
	return b.String()
}
