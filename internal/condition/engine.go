package condition

import (
	"context"
	"sync"
	"time"

	"github.com/whenever-go/whenever/internal/executor"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/registry"
)

// Recorder persists a condition firing and its task-sequence outcome
// for diagnostics (Part D), e.g. *history.Ring. Optional: a nil
// Recorder on Engine simply skips recording.
type Recorder interface {
	RecordFire(ctx context.Context, conditionName string, firedAt time.Time, outcome model.Outcome, result executor.Result) error
}

// Engine drives the state machine (§4.2) for every registered
// condition: check_after suppression, the Checking/Running transitions,
// retry bookkeeping, and per-condition serialization via `busy`.
type Engine struct {
	Conditions *registry.ConditionRegistry
	Executor   *executor.Executor
	Deps       Deps
	Log        *logging.Logger
	History    Recorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(conditions *registry.ConditionRegistry, exec *executor.Executor, deps Deps, log *logging.Logger) *Engine {
	return &Engine{
		Conditions: conditions,
		Executor:   exec,
		Deps:       deps,
		Log:        log,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (e *Engine) lockFor(name string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[name]
	if !ok {
		l = &sync.Mutex{}
		e.locks[name] = l
	}
	return l
}

// Check runs one Checking (and, if due, Running) pass for the named
// condition. It is safe to call concurrently across different
// conditions; calls for the same condition serialize on its lock,
// matching the `busy` flag's intent (§5: "within a single condition,
// operations are strictly serialized").
func (e *Engine) Check(ctx context.Context, name string) {
	cond, ok := e.Conditions.Get(name)
	if !ok {
		return
	}
	state, ok := e.Conditions.State(name)
	if !ok {
		return
	}

	lock := e.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	if state.Status == model.StatusSuspended || isTerminal(state.Status) {
		return
	}

	now := time.Now()
	if !cond.Variant.TimeDeterministic() && cond.CheckAfter > 0 {
		last := state.LastCheckTime
		if last.IsZero() {
			last = state.StartupTime
		}
		if now.Sub(last) < cond.CheckAfter {
			return
		}
	}

	state.Status = model.StatusChecking
	state.Busy = true
	e.Log.Record(logging.WhenBusy, logging.StatusYes, "check", "condition", name, "entering checking state", logging.LevelDebug)

	pred := Build(cond, e.Deps)
	outcome, err := pred.Evaluate(ctx, now, state)
	if err != nil {
		e.Log.Record(logging.WhenProc, logging.StatusErr, "check", "condition", name, err.Error(), logging.LevelWarn)
	}

	if outcome != model.OutcomeSuccess {
		state.LastSuccessStable = false
		state.Status = model.StatusIdle
		state.Busy = false
		e.Log.Record(logging.WhenEnd, logging.StatusOK, "check", "condition", name, "predicate false", logging.LevelDebug)
		return
	}

	suppressed := cond.Recurring && cond.RecurAfterFailedCheck && state.LastSuccessStable
	if suppressed {
		state.Status = model.StatusIdle
		state.Busy = false
		e.Log.Record(logging.WhenEnd, logging.StatusOK, "check", "condition", name, "recurrence suppressed after failed check", logging.LevelDebug)
		return
	}

	state.LastSuccessStable = true
	state.Status = model.StatusRunning
	e.Log.Record(logging.WhenStart, logging.StatusOK, "run", "condition", name, "running task sequence", logging.LevelInfo)

	seq := executor.Sequence{
		ConditionName:   name,
		TaskNames:       cond.Tasks,
		ExecuteSequence: cond.ExecuteSequence,
		BreakOnSuccess:  cond.BreakOnSuccess,
		BreakOnFailure:  cond.BreakOnFailure,
	}
	result := e.Executor.Run(ctx, seq)
	e.Log.Record(logging.WhenEnd, logging.StatusInd, "run", "condition", name, "sequence run "+result.RunID, logging.LevelDebug)
	e.applyRunOutcome(cond, state, result)
	if e.History != nil {
		if err := e.History.RecordFire(ctx, name, now, result.Overall, result); err != nil {
			e.Log.Record(logging.WhenHist, logging.StatusErr, "record", "condition", name, err.Error(), logging.LevelWarn)
		}
	}
	state.Busy = false
}

func (e *Engine) applyRunOutcome(cond *model.Condition, state *model.ConditionState, result executor.Result) {
	state.LastTaskOutcome = result.Overall
	failed := result.Overall == model.OutcomeFailure

	if cond.Recurring {
		state.Status = model.StatusIdle
		if !failed {
			state.LastFireTime = time.Now()
		}
		e.Log.Record(logging.WhenEnd, logging.StatusOK, "run", "condition", cond.Name, "recurring condition returned to idle", logging.LevelInfo)
		return
	}

	if !failed {
		state.Status = model.StatusSucceeded
		state.LastFireTime = time.Now()
		e.Log.Record(logging.WhenEnd, logging.StatusOK, "run", "condition", cond.Name, "non-recurring condition succeeded (terminal)", logging.LevelInfo)
		return
	}

	if state.RemainingRetries == -1 || state.RemainingRetries > 0 {
		if state.RemainingRetries > 0 {
			state.RemainingRetries--
		}
		state.Status = model.StatusIdle
		e.Log.Record(logging.WhenEnd, logging.StatusFail, "run", "condition", cond.Name, "task sequence failed, retry remains", logging.LevelWarn)
		return
	}

	state.Status = model.StatusExhausted
	e.Log.Record(logging.WhenEnd, logging.StatusFail, "run", "condition", cond.Name, "retries exhausted (terminal)", logging.LevelError)
}

func isTerminal(s model.ConditionStatus) bool {
	return s == model.StatusSucceeded || s == model.StatusExhausted
}

// Reset restores a condition to Idle with a full state reset (§4.2:
// Resume performs a full reset; input command reset_conditions too).
func (e *Engine) Reset(name string) {
	cond, ok := e.Conditions.Get(name)
	if !ok {
		return
	}
	state, ok := e.Conditions.State(name)
	if !ok {
		return
	}
	lock := e.lockFor(name)
	lock.Lock()
	defer lock.Unlock()
	*state = model.ConditionState{
		Status:           model.StatusIdle,
		RemainingRetries: cond.MaxTasksRetries,
		StartupTime:      time.Now(),
	}
}

func (e *Engine) Suspend(name string) {
	state, ok := e.Conditions.State(name)
	if !ok {
		return
	}
	lock := e.lockFor(name)
	lock.Lock()
	defer lock.Unlock()
	state.Status = model.StatusSuspended
}

// Resume transitions a suspended condition back to Idle with a full
// reset (§4.2: "Resume implies reset").
func (e *Engine) Resume(name string) {
	e.Reset(name)
}
