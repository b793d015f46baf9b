package checks

import (
	"github.com/whenever-go/whenever/internal/model"
)

// EvaluateParamChecks implements the DBus parameter-check aggregation
// (§4.6): each check's Index addresses into the method reply (a tuple of
// returned values, so Index's first element is always the reply
// position) and its optional Field drills one step further into a
// struct-like dict at that position. With CheckAll, every check must
// pass; otherwise at least one must.
func EvaluateParamChecks(reply []any, checkList []model.ParamCheck, all bool) bool {
	if len(checkList) == 0 {
		return true
	}
	passed := 0
	for _, c := range checkList {
		if evalOne(reply, c) {
			passed++
		} else if all {
			return false
		}
	}
	if all {
		return true
	}
	return passed > 0
}

func evalOne(root any, c model.ParamCheck) bool {
	val, ok := Resolve(root, c.Index)
	if !ok {
		return false
	}
	if c.Field != "" {
		d, ok := val.(map[string]any)
		if !ok {
			return false
		}
		val, ok = d[c.Field]
		if !ok {
			return false
		}
	}
	return Compare(c.Operator, val, c.Value)
}
