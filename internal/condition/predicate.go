// Package condition implements the condition state machine (§4.2) and
// the eight predicate variants (§4.4). Grounded on
// original_source/src/condition/*.rs for predicate semantics.
package condition

import (
	"context"
	"time"

	"github.com/whenever-go/whenever/internal/model"
)

// CheckOutcome is a predicate's raw evaluation: Success means the
// condition is met (tasks should run), Failure and Undetermined both
// mean "not met" for the state machine but are logged distinctly
// (matching Command/Script predicates that reuse the task outcome
// enum, per §4.4).
type CheckOutcome = model.Outcome

// Predicate is implemented once per condition variant. now is the
// instant the check began; implementations that track their own timing
// (Interval, Time, Idle) read/update state themselves.
type Predicate interface {
	Evaluate(ctx context.Context, now time.Time, state *model.ConditionState) (CheckOutcome, error)
}

// Bridge reports and clears the Bucket debounce flag for one condition
// (§3 invariant: at most one firing per event per tick).
type Bridge interface {
	Consume(conditionName string) bool
}

// IdleSource reports current host idle duration (§4.4 Idle).
type IdleSource interface {
	IdleTime() (time.Duration, error)
}

// DBusCaller performs a DBus method call returning a generic reply
// tuple (§4.4 DBus, §4.6).
type DBusCaller interface {
	Call(ctx context.Context, bus, service, object, iface, method string, params []any) ([]any, error)
}

// WMIQuerier executes a WQL query returning a generic row set (§4.4 WMI, §4.7).
type WMIQuerier interface {
	Query(query string) ([]map[string]any, error)
}

// CommandRunner runs a Command spec and classifies its outcome (§4.4 Command).
type CommandRunner interface {
	RunCommand(ctx context.Context, name, conditionName string, spec *model.CommandSpec) (model.Outcome, error)
}

// ScriptRunner runs a Script spec (§4.4 Script).
type ScriptRunner interface {
	RunScript(name, conditionName string, spec *model.ScriptSpec) (model.Outcome, error)
}

// Deps bundles every external collaborator a predicate might need; a
// Build call only uses the ones relevant to the condition's variant.
type Deps struct {
	Idle    IdleSource
	DBus    DBusCaller
	WMI     WMIQuerier
	Command CommandRunner
	Script  ScriptRunner
	Bridge  Bridge
}

// Build returns the Predicate implementation for cond's variant.
func Build(cond *model.Condition, deps Deps) Predicate {
	switch cond.Variant {
	case model.CondInterval:
		return &intervalPredicate{spec: cond.Interval, recurring: cond.Recurring}
	case model.CondTime:
		return &timePredicate{spec: cond.Time}
	case model.CondIdle:
		return &idlePredicate{spec: cond.Idle, idle: deps.Idle}
	case model.CondCommand:
		return &commandPredicate{name: cond.Name, spec: cond.Command, runner: deps.Command}
	case model.CondScript:
		return &scriptPredicate{name: cond.Name, spec: cond.Script, runner: deps.Script}
	case model.CondDBus:
		return &dbusPredicate{spec: cond.DBus, caller: deps.DBus}
	case model.CondWMI:
		return &wmiPredicate{spec: cond.WMI, querier: deps.WMI}
	case model.CondBucket:
		return &bucketPredicate{name: cond.Name, bridge: deps.Bridge}
	}
	return nil
}
