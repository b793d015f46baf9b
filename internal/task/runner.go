package task

import (
	"context"
	"fmt"

	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/scripting"
)

// InternalHandler invokes the input-command interpreter with a single
// line, matching §4.3's Internal task: malformed commands log a
// warning but never fail the task.
type InternalHandler func(ctx context.Context, line string) error

// Runner dispatches a Task by variant and returns its outcome plus a
// short human-readable summary for logging.
type Runner struct {
	Log     scripting.Logger
	Internal InternalHandler
}

func (r *Runner) Run(ctx context.Context, t *model.Task, conditionName string) (model.Outcome, string, error) {
	switch t.Variant {
	case model.TaskCommand:
		outcome, out, err := RunCommand(ctx, t.Name, conditionName, t.Command)
		summary := fmt.Sprintf("exit=%d stdout=%q stderr=%q", out.ExitCode, trim(out.Stdout), trim(out.Stderr))
		return outcome, summary, err
	case model.TaskScript:
		outcome, err := RunScript(t.Name, conditionName, t.Script, r.Log)
		return outcome, "", err
	case model.TaskInternal:
		if r.Internal == nil {
			return model.OutcomeUndetermined, "", fmt.Errorf("no internal command handler configured")
		}
		if err := r.Internal(ctx, t.Internal.Command); err != nil {
			return model.OutcomeUndetermined, err.Error(), nil
		}
		return model.OutcomeUndetermined, "", nil
	}
	return model.OutcomeUndetermined, "", fmt.Errorf("unknown task variant %v", t.Variant)
}

func trim(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
