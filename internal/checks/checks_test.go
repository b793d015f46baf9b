package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/whenever-go/whenever/internal/model"
)

func TestCompareOperators(t *testing.T) {
	assert.True(t, Compare("eq", int64(3), int64(3)))
	assert.False(t, Compare("eq", int64(3), int64(4)))
	assert.True(t, Compare("neq", "a", "b"))
	assert.True(t, Compare("gt", 5.0, 2.0))
	assert.True(t, Compare("le", 2, 2))
	assert.False(t, Compare("gt", 5.0, 2), "float/int cross-type gt must not coerce")
	assert.False(t, Compare("le", 2, 2.0), "int/float cross-type le must not coerce")
	assert.False(t, Compare("eq", 2, 2.0), "int/float cross-type eq must not coerce")
	assert.True(t, Compare("match", "hello world", "^hello"))
	assert.True(t, Compare("contains", []any{int64(1), int64(2)}, int64(2)))
	assert.False(t, Compare("contains", []any{int64(1), int64(2)}, 2))
	assert.True(t, Compare("ncontains", []any{int64(1)}, int64(9)))
}

func TestResolveIndexPath(t *testing.T) {
	v := []any{map[string]any{"Name": "disk0", "Free": int64(512)}}
	got, ok := Resolve(any(v), []any{0, "Free"})
	assert.True(t, ok)
	assert.Equal(t, int64(512), got)

	_, ok = Resolve(any(v), []any{1})
	assert.False(t, ok)
}

func TestEvaluateParamChecksAll(t *testing.T) {
	reply := []any{int64(42), "ok"}
	cs := []model.ParamCheck{
		{Index: []any{0}, Operator: "eq", Value: int64(42)},
		{Index: []any{1}, Operator: "eq", Value: "ok"},
	}
	assert.True(t, EvaluateParamChecks(reply, cs, true))
	cs[1].Value = "bad"
	assert.False(t, EvaluateParamChecks(reply, cs, true))
	assert.True(t, EvaluateParamChecks(reply, cs, false))
}

func TestEvaluateResultChecksNoIndexAnyRow(t *testing.T) {
	rows := []map[string]any{
		{"Name": "C:", "FreeSpace": int64(1000)},
		{"Name": "D:", "FreeSpace": int64(5)},
	}
	cs := []model.ParamCheck{{Field: "FreeSpace", Operator: "lt", Value: int64(10)}}
	assert.True(t, EvaluateResultChecks(rows, cs, true))

	cs = []model.ParamCheck{{Field: "Name", Operator: "eq", Value: "Z:"}}
	assert.False(t, EvaluateResultChecks(rows, cs, true))
}

func TestEvaluateResultChecksExplicitIndex(t *testing.T) {
	rows := []map[string]any{
		{"Name": "C:", "FreeSpace": int64(1000)},
		{"Name": "D:", "FreeSpace": int64(5)},
	}
	cs := []model.ParamCheck{{Index: []any{1}, Field: "FreeSpace", Operator: "lt", Value: int64(10)}}
	assert.True(t, EvaluateResultChecks(rows, cs, true))
	cs = []model.ParamCheck{{Index: []any{0}, Field: "FreeSpace", Operator: "lt", Value: int64(10)}}
	assert.False(t, EvaluateResultChecks(rows, cs, true))
}
