package condition

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenever-go/whenever/internal/executor"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/registry"
	"github.com/whenever-go/whenever/internal/task"
)

func newTestEngine(t *testing.T, internal task.InternalHandler) (*Engine, *registry.ConditionRegistry, *registry.TaskRegistry) {
	t.Helper()
	tasks := registry.NewTaskRegistry()
	conditions := registry.NewConditionRegistry()
	runner := &task.Runner{Internal: internal}
	exec := executor.New(tasks, runner)
	return New(conditions, exec, Deps{}, logging.NewNop()), conditions, tasks
}

func intervalCondition(name string, recurring bool, taskNames ...string) *model.Condition {
	return &model.Condition{
		Name:            name,
		Variant:         model.CondInterval,
		Recurring:       recurring,
		MaxTasksRetries: -1,
		Tasks:           taskNames,
		ExecuteSequence: true,
		Interval:        &model.IntervalSpec{Interval: time.Millisecond},
	}
}

func TestCheckRecurringIntervalRunsTasksAndReturnsToIdle(t *testing.T) {
	var calls int32
	eng, conditions, tasks := newTestEngine(t, func(ctx context.Context, line string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, tasks.Add(&model.Task{Name: "t1", Variant: model.TaskInternal, Internal: &model.InternalSpec{Command: "pause"}}))
	cond := intervalCondition("c1", true, "t1")
	require.NoError(t, conditions.Add(cond))

	eng.Check(context.Background(), "c1")

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	st, _ := conditions.State("c1")
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.False(t, st.Busy)
}

func TestCheckSuspendedConditionSkipsEvaluation(t *testing.T) {
	var calls int32
	eng, conditions, tasks := newTestEngine(t, func(ctx context.Context, line string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, tasks.Add(&model.Task{Name: "t1", Variant: model.TaskInternal, Internal: &model.InternalSpec{Command: "pause"}}))
	cond := intervalCondition("c1", true, "t1")
	require.NoError(t, conditions.Add(cond))
	eng.Suspend("c1")

	eng.Check(context.Background(), "c1")

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	st, _ := conditions.State("c1")
	assert.Equal(t, model.StatusSuspended, st.Status)
}

func TestCheckNonRecurringWithUndeterminedTasksBecomesTerminalSuccess(t *testing.T) {
	eng, conditions, tasks := newTestEngine(t, func(ctx context.Context, line string) error { return nil })
	require.NoError(t, tasks.Add(&model.Task{Name: "t1", Variant: model.TaskInternal, Internal: &model.InternalSpec{Command: "pause"}}))
	cond := intervalCondition("c1", false, "t1")
	require.NoError(t, conditions.Add(cond))

	eng.Check(context.Background(), "c1")

	st, _ := conditions.State("c1")
	assert.Equal(t, model.StatusSucceeded, st.Status)
}

func TestResetRestoresIdleAndFullRetryBudget(t *testing.T) {
	eng, conditions, _ := newTestEngine(t, nil)
	cond := intervalCondition("c1", false)
	cond.MaxTasksRetries = 3
	require.NoError(t, conditions.Add(cond))
	eng.Suspend("c1")

	eng.Reset("c1")

	st, _ := conditions.State("c1")
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 3, st.RemainingRetries)
}

func TestResumeImpliesReset(t *testing.T) {
	eng, conditions, _ := newTestEngine(t, nil)
	cond := intervalCondition("c1", false)
	require.NoError(t, conditions.Add(cond))
	eng.Suspend("c1")
	st, _ := conditions.State("c1")
	require.Equal(t, model.StatusSuspended, st.Status)

	eng.Resume("c1")

	st, _ = conditions.State("c1")
	assert.Equal(t, model.StatusIdle, st.Status)
}

func TestCheckRecurAfterFailedCheckSuppressesSubsequentSuccesses(t *testing.T) {
	var calls int32
	eng, conditions, tasks := newTestEngine(t, func(ctx context.Context, line string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, tasks.Add(&model.Task{Name: "t1", Variant: model.TaskInternal, Internal: &model.InternalSpec{Command: "pause"}}))
	cond := intervalCondition("c1", true, "t1")
	cond.RecurAfterFailedCheck = true
	require.NoError(t, conditions.Add(cond))

	eng.Check(context.Background(), "c1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "first success must run tasks")

	time.Sleep(2 * time.Millisecond) // let the 1ms interval elapse so the predicate succeeds again
	eng.Check(context.Background(), "c1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second consecutive success must be suppressed")

	st, _ := conditions.State("c1")
	st.LastSuccessStable = false

	time.Sleep(2 * time.Millisecond)
	eng.Check(context.Background(), "c1")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "success after a cleared flag must run tasks again")
}

func TestApplyRunOutcomeRetriesThenExhausts(t *testing.T) {
	eng, conditions, _ := newTestEngine(t, nil)
	cond := intervalCondition("c1", false)
	cond.MaxTasksRetries = 1
	require.NoError(t, conditions.Add(cond))
	st, _ := conditions.State("c1")

	eng.applyRunOutcome(cond, st, executor.Result{Overall: model.OutcomeFailure})
	assert.Equal(t, model.StatusIdle, st.Status)
	assert.Equal(t, 0, st.RemainingRetries)

	eng.applyRunOutcome(cond, st, executor.Result{Overall: model.OutcomeFailure})
	assert.Equal(t, model.StatusExhausted, st.Status)
}
