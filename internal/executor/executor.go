// Package executor runs a condition's task sequence per §4.3's flow
// control: concurrent-and-ignored when execute_sequence=false, else
// strictly ordered with break_on_success/break_on_failure gating,
// aggregating a tri-state outcome for the condition state machine.
// Structured as a named ordered sequence run synchronously by the
// caller, rather than a queue of independently dispatched jobs.
package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/registry"
	"github.com/whenever-go/whenever/internal/task"
)

// Sequence describes one run of a condition's task list.
type Sequence struct {
	ConditionName   string
	TaskNames       []string
	ExecuteSequence bool
	BreakOnSuccess  bool
	BreakOnFailure  bool
}

// TaskOutcome pairs a task name with its result, for logging.
type TaskOutcome struct {
	Name    string
	Outcome model.Outcome
	Detail  string
	Err     error
}

// Result is the full record of one sequence run. RunID correlates the
// sequence's own log lines and its eventual history record (a fresh
// id per run, not a task or condition identity).
type Result struct {
	RunID    string
	Outcomes []TaskOutcome
	Overall  model.Outcome
}

// Executor runs sequences against a task registry using a task.Runner.
type Executor struct {
	Tasks  *registry.TaskRegistry
	Runner *task.Runner
}

func New(tasks *registry.TaskRegistry, runner *task.Runner) *Executor {
	return &Executor{Tasks: tasks, Runner: runner}
}

// Run executes seq and returns the per-task outcomes plus the
// aggregate outcome used by the condition state machine.
func (e *Executor) Run(ctx context.Context, seq Sequence) Result {
	runID := uuid.New().String()
	var res Result
	if !seq.ExecuteSequence {
		res = e.runConcurrent(ctx, seq)
	} else {
		res = e.runSequential(ctx, seq)
	}
	res.RunID = runID
	return res
}

func (e *Executor) runConcurrent(ctx context.Context, seq Sequence) Result {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var outcomes []TaskOutcome
	for _, name := range seq.TaskNames {
		t, ok := e.Tasks.Get(name)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(t *model.Task) {
			defer wg.Done()
			outcome, detail, err := e.Runner.Run(ctx, t, seq.ConditionName)
			mu.Lock()
			outcomes = append(outcomes, TaskOutcome{Name: t.Name, Outcome: outcome, Detail: detail, Err: err})
			mu.Unlock()
		}(t)
	}
	wg.Wait()
	return Result{Outcomes: outcomes, Overall: model.OutcomeUndetermined}
}

func (e *Executor) runSequential(ctx context.Context, seq Sequence) Result {
	var outcomes []TaskOutcome
	sawSuccess := false
	sawFailure := false
	sawEvaluated := false

	for _, name := range seq.TaskNames {
		t, ok := e.Tasks.Get(name)
		if !ok {
			continue
		}
		outcome, detail, err := e.Runner.Run(ctx, t, seq.ConditionName)
		outcomes = append(outcomes, TaskOutcome{Name: t.Name, Outcome: outcome, Detail: detail, Err: err})

		switch outcome {
		case model.OutcomeSuccess:
			sawEvaluated = true
			sawSuccess = true
			if seq.BreakOnSuccess {
				return Result{Outcomes: outcomes, Overall: model.OutcomeSuccess}
			}
		case model.OutcomeFailure:
			sawEvaluated = true
			sawFailure = true
			if seq.BreakOnFailure {
				return Result{Outcomes: outcomes, Overall: aggregate(sawSuccess, sawFailure, sawEvaluated)}
			}
		case model.OutcomeUndetermined:
			// proceed past undetermined tasks regardless of flags
		}
	}
	return Result{Outcomes: outcomes, Overall: aggregate(sawSuccess, sawFailure, sawEvaluated)}
}

// aggregate implements §4.2/§4.3: Success if every evaluated task was
// non-Failure and at least one was Success; Failure if any evaluated
// task failed; otherwise Undetermined.
func aggregate(sawSuccess, sawFailure, sawEvaluated bool) model.Outcome {
	if !sawEvaluated {
		return model.OutcomeUndetermined
	}
	if sawFailure {
		return model.OutcomeFailure
	}
	if sawSuccess {
		return model.OutcomeSuccess
	}
	return model.OutcomeUndetermined
}
