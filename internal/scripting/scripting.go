// Package scripting runs embedded Lua snippets for Script tasks and
// Script conditions. The scripting language itself is an external
// collaborator: this package is the one adapter wiring it in.
package scripting

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/whenever-go/whenever/internal/logging"
)

// Severity mirrors the five levels the `log` table exposes to scripts.
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

// Logger is the minimal sink a Run call needs; internal/logging.Logger
// satisfies it.
type Logger interface {
	Record(when logging.When, status logging.Status, action, item, itemID, message string, level logging.Level)
}

// Result carries the three-way outcome of a script run: an error always
// means failure; a nil Matched means no expected-results check was
// configured at all, so the caller should treat the run as
// undetermined rather than successful or failed.
type Result struct {
	Matched *bool
	Err     error
}

// Run executes source in a fresh interpreter, sets whenever_task and
// whenever_condition in its globals (task name and triggering condition
// name, matching original_source's LUAVAR_NAME_TASK/LUAVAR_NAME_COND),
// installs a five-method log table, optionally runs an init script
// first, then evaluates expected against the post-run globals.
func Run(taskName, triggerName, source, initScript string, expected map[string]any, expectAll bool, log Logger) Result {
	l := lua.NewState()
	defer l.Close()

	l.SetGlobal("whenever_task", lua.LString(taskName))
	l.SetGlobal("whenever_condition", lua.LString(triggerName))
	installLogTable(l, taskName, triggerName, log)

	if initScript != "" {
		if err := l.DoString(initScript); err != nil {
			return Result{Err: fmt.Errorf("init script error: %w", err)}
		}
	}

	if err := l.DoString(source); err != nil {
		return Result{Err: scriptError(err)}
	}

	if len(expected) == 0 {
		return Result{}
	}

	matched := matchExpected(l, expected, expectAll)
	return Result{Matched: &matched}
}

func scriptError(err error) error {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return fmt.Errorf("lua: %s", msg)
}

func matchExpected(l *lua.LState, expected map[string]any, all bool) bool {
	for name, want := range expected {
		got := l.GetGlobal(name)
		ok := luaValueMatches(got, want)
		if all && !ok {
			return false
		}
		if !all && ok {
			return true
		}
	}
	return all
}

func luaValueMatches(got lua.LValue, want any) bool {
	switch w := want.(type) {
	case string:
		s, ok := got.(lua.LString)
		return ok && string(s) == w
	case bool:
		b, ok := got.(lua.LBool)
		return ok && bool(b) == w
	case int:
		n, ok := got.(lua.LNumber)
		return ok && float64(n) == float64(w)
	case int64:
		n, ok := got.(lua.LNumber)
		return ok && float64(n) == float64(w)
	case float64:
		n, ok := got.(lua.LNumber)
		return ok && float64(n) == w
	}
	return false
}

func installLogTable(l *lua.LState, taskName, triggerName string, log Logger) {
	tbl := l.NewTable()
	register := func(name string, sev Severity, level logging.Level) {
		l.SetField(tbl, name, l.NewFunction(func(ls *lua.LState) int {
			msg := ls.CheckString(1)
			if log != nil {
				log.Record(logging.WhenProc, logging.StatusMsg, "script",
					taskName, "", fmt.Sprintf("(trigger: %s) (lua) %s", triggerName, msg), level)
			}
			return 0
		}))
	}
	register("trace", SeverityTrace, logging.LevelTrace)
	register("debug", SeverityDebug, logging.LevelDebug)
	register("info", SeverityInfo, logging.LevelInfo)
	register("warn", SeverityWarn, logging.LevelWarn)
	register("error", SeverityError, logging.LevelError)
	l.SetGlobal("log", tbl)
}
