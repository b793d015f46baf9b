package checks

import (
	"github.com/whenever-go/whenever/internal/model"
)

// EvaluateResultChecks implements the WMI result-check aggregation
// (§4.7). rows is the query result set, each row a field-name-to-value
// map. A check whose Index is empty applies across all rows: it must
// hold for at least one row (the §4.7 "no index" rule). A check with a
// non-empty Index addresses a specific row (Index[0] is the row
// number) and must hold for that row. CheckAll requires every check in
// checkList to be satisfied by this rule; otherwise at least one must.
func EvaluateResultChecks(rows []map[string]any, checkList []model.ParamCheck, all bool) bool {
	if len(checkList) == 0 {
		return true
	}
	passed := 0
	for _, c := range checkList {
		if resultCheckSatisfied(rows, c) {
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

func resultCheckSatisfied(rows []map[string]any, c model.ParamCheck) bool {
	if len(c.Index) == 0 {
		for _, row := range rows {
			if evalRow(row, c) {
				return true
			}
		}
		return false
	}
	idx, ok := c.Index[0].(int)
	if !ok {
		if i64, ok2 := c.Index[0].(int64); ok2 {
			idx = int(i64)
		} else {
			return false
		}
	}
	if idx < 0 || idx >= len(rows) {
		return false
	}
	rest := model.ParamCheck{Field: c.Field, Operator: c.Operator, Value: c.Value}
	if len(c.Index) > 1 {
		rest.Index = c.Index[1:]
	}
	return evalRow(rows[idx], rest)
}

func evalRow(row map[string]any, c model.ParamCheck) bool {
	val, ok := Resolve(any(row), c.Index)
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
