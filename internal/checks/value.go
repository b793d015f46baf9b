// Package checks implements the generic parameter-check (§4.6) and
// result-check (§4.7) evaluators shared by the DBus and WMI predicates
// and by DBus signal filtering.
package checks

import (
	"fmt"
	"reflect"
	"regexp"
)

// Resolve walks a generic reply value (nested []any / map[string]any /
// scalars, the shape a DBus reply or WMI record is normalized into)
// following an index path. Integer path elements index into a list,
// string elements into a dictionary by key. It reports ok=false if the
// path cannot be followed.
func Resolve(value any, index []any) (any, bool) {
	cur := value
	for _, step := range index {
		switch s := step.(type) {
		case int:
			l, ok := cur.([]any)
			if !ok || s < 0 || s >= len(l) {
				return nil, false
			}
			cur = l[s]
		case int64:
			l, ok := cur.([]any)
			if !ok || int(s) < 0 || int(s) >= len(l) {
				return nil, false
			}
			cur = l[s]
		case string:
			d, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok := d[s]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

// numeric reports whether v is an integer or float kind, returning its
// value widened to float64 alongside whether it was an integer.
func numeric(v any) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case float32:
		return float64(n), false, true
	case float64:
		return n, false, true
	}
	return 0, false, false
}

// Compare implements the §4.6 operator semantics over two generic
// values. Comparison operators require integer-integer or float-float
// (no implicit cross-type coercion between the two numeric kinds) or
// string-string (eq/neq only); mismatched types are false.
func Compare(op string, left, right any) bool {
	switch op {
	case "eq", "neq":
		eq := scalarEqual(left, right)
		if op == "neq" {
			return !eq
		}
		return eq
	case "gt", "ge", "lt", "le":
		lf, lIsInt, lok := numeric(left)
		rf, rIsInt, rok := numeric(right)
		if !lok || !rok || lIsInt != rIsInt {
			return false
		}
		switch op {
		case "gt":
			return lf > rf
		case "ge":
			return lf >= rf
		case "lt":
			return lf < rf
		case "le":
			return lf <= rf
		}
	case "match":
		ls, ok := left.(string)
		if !ok {
			return false
		}
		rs, ok := right.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(rs)
		if err != nil {
			return false
		}
		return re.MatchString(ls)
	case "contains", "ncontains":
		res := containsCheck(left, right)
		if op == "ncontains" {
			return !res
		}
		return res
	}
	return false
}

func scalarEqual(left, right any) bool {
	lf, lIsInt, lok := numeric(left)
	rf, rIsInt, rok := numeric(right)
	if lok && rok {
		return lIsInt == rIsInt && lf == rf
	}
	ls, lok2 := left.(string)
	rs, rok2 := right.(string)
	if lok2 && rok2 {
		return ls == rs
	}
	if lb, ok := left.(bool); ok {
		if rb, ok := right.(bool); ok {
			return lb == rb
		}
	}
	return false
}

func containsCheck(left, right any) bool {
	switch l := left.(type) {
	case string:
		rs, ok := right.(string)
		if !ok {
			return false
		}
		return regexpFreeContains(l, rs)
	case []any:
		for _, e := range l {
			if exactTypeEqual(e, right) {
				return true
			}
		}
		return false
	case map[string]any:
		rs, ok := right.(string)
		if !ok {
			return false
		}
		_, ok = l[rs]
		return ok
	}
	return false
}

func regexpFreeContains(haystack, needle string) bool {
	return len(needle) == 0 || indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// exactTypeEqual requires the dynamic types to match exactly (§4.6:
// "element type must match exactly" for list membership), unlike
// scalarEqual's numeric widening.
func exactTypeEqual(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// String renders a value for logging.
func String(v any) string { return fmt.Sprintf("%v", v) }
