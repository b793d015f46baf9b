package condition

import (
	"context"
	"fmt"
	"time"

	"github.com/whenever-go/whenever/internal/checks"
	"github.com/whenever-go/whenever/internal/model"
)

// intervalPredicate: Success when now >= lastCheckTime + interval;
// lastCheckTime advances on every check regardless of outcome (§4.4).
type intervalPredicate struct {
	spec      *model.IntervalSpec
	recurring bool
}

func (p *intervalPredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	last := state.LastCheckTime
	if last.IsZero() {
		last = state.StartupTime
	}
	due := !now.Before(last.Add(p.spec.Interval))
	state.LastCheckTime = now
	if due {
		return model.OutcomeSuccess, nil
	}
	return model.OutcomeFailure, nil
}

// timePredicate: Success when any configured partial spec's
// instantiation has occurred since lastCheckTime (§4.4 Time).
type timePredicate struct {
	spec *model.TimeCondSpec
}

func (p *timePredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	last := state.LastCheckTime
	if last.IsZero() {
		last = state.StartupTime
	}
	fired := timeSpecsFiredSince(p.spec.Specs, last, now)
	state.LastCheckTime = now
	if fired {
		return model.OutcomeSuccess, nil
	}
	return model.OutcomeFailure, nil
}

// idlePredicate: Success exactly once per idle period once the host has
// been idle for at least idle_seconds; re-arms once idle time drops
// back below the threshold (original_source/idle_cond.rs's
// idle_verified flip-flop, tracked here in ConditionState via its own
// IdleFired field, kept separate from LastSuccessStable which the
// engine uses for recur-after-failed-check suppression).
type idlePredicate struct {
	spec *model.IdleSpec
	idle IdleSource
}

func (p *idlePredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	state.LastCheckTime = now
	d, err := p.idle.IdleTime()
	if err != nil {
		return model.OutcomeFailure, nil
	}
	if !state.IdleFired {
		if d >= p.spec.IdleSeconds {
			state.IdleFired = true
			return model.OutcomeSuccess, nil
		}
		return model.OutcomeFailure, nil
	}
	if d < p.spec.IdleSeconds {
		state.IdleFired = false
	}
	return model.OutcomeFailure, nil
}

// commandPredicate: run the command per §4.3's outcome-priority rules,
// returning the resulting outcome directly as the predicate value.
type commandPredicate struct {
	name   string
	spec   *model.CommandSpec
	runner CommandRunner
}

func (p *commandPredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	state.LastCheckTime = now
	return p.runner.RunCommand(ctx, p.name, p.name, p.spec)
}

// scriptPredicate: run the script and apply expected-results analysis.
type scriptPredicate struct {
	name   string
	spec   *model.ScriptSpec
	runner ScriptRunner
}

func (p *scriptPredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	state.LastCheckTime = now
	return p.runner.RunScript(p.name, p.name, p.spec)
}

// dbusPredicate: invoke the configured method and evaluate parameter
// checks against the reply (§4.4 DBus, §4.6).
type dbusPredicate struct {
	spec   *model.DBusSpec
	caller DBusCaller
}

func (p *dbusPredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	state.LastCheckTime = now
	reply, err := p.caller.Call(ctx, p.spec.Bus, p.spec.Service, p.spec.Object, p.spec.Interface, p.spec.Method, p.spec.Params)
	if err != nil {
		return model.OutcomeFailure, fmt.Errorf("dbus call: %w", err)
	}
	if checks.EvaluateParamChecks(reply, p.spec.Checks, p.spec.CheckAll) {
		return model.OutcomeSuccess, nil
	}
	return model.OutcomeFailure, nil
}

// wmiPredicate: run the query and evaluate result checks (§4.4 WMI, §4.7).
type wmiPredicate struct {
	spec    *model.WMISpec
	querier WMIQuerier
}

func (p *wmiPredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	state.LastCheckTime = now
	rows, err := p.querier.Query(p.spec.Query)
	if err != nil {
		return model.OutcomeFailure, fmt.Errorf("wmi query: %w", err)
	}
	if len(p.spec.Checks) == 0 {
		if len(rows) > 0 {
			return model.OutcomeSuccess, nil
		}
		return model.OutcomeFailure, nil
	}
	if checks.EvaluateResultChecks(rows, p.spec.Checks, p.spec.CheckAll) {
		return model.OutcomeSuccess, nil
	}
	return model.OutcomeFailure, nil
}

// bucketPredicate: Success iff the bridge's debounced flag for this
// condition is set; consuming it clears it (§4.4 Bucket).
type bucketPredicate struct {
	name   string
	bridge Bridge
}

func (p *bucketPredicate) Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error) {
	state.LastCheckTime = now
	if p.bridge.Consume(p.name) {
		return model.OutcomeSuccess, nil
	}
	return model.OutcomeFailure, nil
}
