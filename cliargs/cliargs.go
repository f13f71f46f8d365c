// Package cliargs renders struct-tagged option structs into argument vectors for
// HostExec, the way the teacher's options.ToArgs renders apple-container's `--flag
// value` CLI surface. jail(8) instead takes `-c key=value key2=value2 ...`, so this
// generalizes the original with a `mode` on the tag: "flag" (the teacher's convention,
// `--name value`) or "kv" (jail's convention, bare `key=value` tokens, field order
// preserved since Go's reflect walks struct fields in declaration order).
package cliargs

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Tag is the struct field tag this package looks for: `cliarg:"<name>[,<mode>[,keepZero]]"`.
const Tag = "cliarg"

// ToFlagArgs renders s into a `--flag value` argument vector, skipping zero-valued
// fields unless the tag requests keepZero. Embedded structs are flattened.
func ToFlagArgs[T any](s *T) []string {
	return render(s, "flag")
}

// ToKVArgs renders s into a jail(8)-style vector of bare `key=value` tokens (plus any
// bare flag-only tokens for bool fields set true), in struct field declaration order.
func ToKVArgs[T any](s *T) []string {
	return render(s, "kv")
}

func render[T any](s *T, defaultMode string) []string {
	if s == nil {
		s = new(T)
	}
	var ret []string
	st := reflect.TypeOf(*s)
	sv := reflect.ValueOf(*s)
	if st.Kind() == reflect.Pointer {
		sv = reflect.Indirect(sv)
		st = sv.Type()
	}
	for i := range st.NumField() {
		field := st.Field(i)
		fv := sv.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			fvi := fv.Interface()
			ret = append(ret, render(&fvi, defaultMode)...)
			continue
		}
		tag, ok := field.Tag.Lookup(Tag)
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		name := parts[0]
		mode := defaultMode
		keepZero := false
		for _, opt := range parts[1:] {
			switch strings.ToLower(opt) {
			case "flag", "kv":
				mode = strings.ToLower(opt)
			case "keepzero":
				keepZero = true
			}
		}

		v := reflect.ValueOf(fv.Interface())
		if !keepZero && v.IsZero() {
			continue
		}

		fieldKind := field.Type.Kind()
		switch {
		case fieldKind == reflect.Array || fieldKind == reflect.Slice:
			for j := 0; j < fv.Len(); j++ {
				av := fv.Index(j)
				ret = append(ret, appendOne(mode, name, fmt.Sprintf("%v", av))...)
			}
		case fieldKind == reflect.Map:
			m := v.Interface().(map[string]string)
			keys := slices.Sorted(maps.Keys(m))
			mapVals := make([]string, 0, len(keys))
			for _, k := range keys {
				mapVals = append(mapVals, fmt.Sprintf("%v=%v", k, m[k]))
			}
			ret = append(ret, appendOne(mode, name, strings.Join(mapVals, ","))...)
		case fieldKind == reflect.Bool:
			ret = append(ret, appendOne(mode, name, "")...)
		default:
			ret = append(ret, appendOne(mode, name, fmt.Sprintf("%v", fv.Interface()))...)
		}
	}
	return ret
}

func appendOne(mode, name, value string) []string {
	switch mode {
	case "kv":
		if value == "" {
			return []string{name}
		}
		return []string{fmt.Sprintf("%s=%s", name, value)}
	default: // "flag"
		if value == "" {
			return []string{name}
		}
		return []string{name, value}
	}
}
