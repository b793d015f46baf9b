package config

import (
	"fmt"
	"regexp"
	"time"
)

// m is a thin helper around map[string]any, mirroring the generic
// config-map walking done in original_source/src/cfghelp.rs before
// typed structs are bound.
type m map[string]any

func asMap(v any) (m, bool) {
	switch t := v.(type) {
	case map[string]any:
		return m(t), true
	}
	return nil, false
}

func (c m) checkKeys(allowed ...string) error {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	for k := range c {
		if !ok[k] {
			return errf(kindUnknownField, "unknown field %q", k)
		}
	}
	return nil
}

func (c m) str(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c m) mandatoryStr(key string) (string, error) {
	s, ok := c.str(key)
	if !ok {
		return "", errf(kindMissingField, "missing mandatory field %q", key)
	}
	return s, nil
}

func (c m) boolOr(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func (c m) intOr(key string, def int) int {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return def
}

func (c m) intPtr(key string) *int {
	v, ok := c[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int64:
		i := int(n)
		return &i
	case int:
		return &n
	case float64:
		i := int(n)
		return &i
	}
	return nil
}

func (c m) durationSecondsOr(key string, def time.Duration) time.Duration {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return time.Duration(n) * time.Second
	case float64:
		return time.Duration(n * float64(time.Second))
	}
	return def
}

func (c m) strSlice(key string) []string {
	v, ok := c[key]
	if !ok {
		return nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, e := range l {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c m) stringMap(key string) map[string]string {
	v, ok := c[key]
	if !ok {
		return nil
	}
	mm, ok := asMap(v)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(mm))
	for k, val := range mm {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (c m) anyMap(key string) map[string]any {
	v, ok := c[key]
	if !ok {
		return nil
	}
	mm, ok := asMap(v)
	if !ok {
		return nil
	}
	return map[string]any(mm)
}

func (c m) list(key string) []any {
	v, ok := c[key]
	if !ok {
		return nil
	}
	l, _ := v.([]any)
	return l
}

// validName checks §6.1's "alphanumeric plus underscore, must start with
// a letter" item-name rule.
var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func validName(s string) error {
	if !nameRe.MatchString(s) {
		return errf(kindInvalidValue, "invalid item name %q", s)
	}
	return nil
}

func wrapItem(kind, name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %q: %w", kind, name, err)
}
