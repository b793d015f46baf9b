package task

import (
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/scripting"
)

// RunScript executes spec's Lua source via internal/scripting and maps
// the result to the §4.3 Script-task outcome rule: a runtime error is
// Failure; otherwise Success/Failure from the expected-results match,
// and Undetermined when no expected results were configured.
func RunScript(taskName, conditionName string, spec *model.ScriptSpec, log scripting.Logger) (model.Outcome, error) {
	res := scripting.Run(taskName, conditionName, spec.Source, spec.InitScript, spec.Expected, spec.ExpectAll, log)
	if res.Err != nil {
		return model.OutcomeFailure, res.Err
	}
	if res.Matched == nil {
		return model.OutcomeUndetermined, nil
	}
	if *res.Matched {
		return model.OutcomeSuccess, nil
	}
	return model.OutcomeFailure, nil
}
