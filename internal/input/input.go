// Package input implements the line-oriented control channel (§6.3):
// one command per newline-terminated line read from standard input,
// mutating scheduler and registry state. A thin command dispatcher
// over an external control surface, using a line-command dispatch
// table keyed by command word rather than an HTTP route or subject.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
)

// Scheduler is the subset of *scheduler.Scheduler the interpreter drives.
type Scheduler interface {
	Pause()
	Resume()
	ExitGraceful()
	ExitImmediate()
	ResetConditions(names ...string)
	SuspendCondition(name string)
	ResumeCondition(name string)
}

// Poster posts a fired notification for an event name into the bridge.
type Poster interface {
	Post(eventName string)
}

// EventLookup resolves an event by name, used to validate `trigger`
// against Command-type events only (§6.3).
type EventLookup interface {
	Get(name string) (*model.Event, bool)
}

// Reconfigurer hot-reloads item configuration from a file path (§4.8).
// Implemented by the reconfiguration engine; kept as an interface here
// so this package does not depend on it directly.
type Reconfigurer interface {
	Reconfigure(path string) error
}

// ExitSignal is the action requested by `exit`/`quit`/`kill`.
type ExitSignal int

const (
	ExitNone ExitSignal = iota
	ExitGraceful
	ExitImmediate
)

// Interpreter reads and dispatches control-channel commands.
type Interpreter struct {
	Scheduler Scheduler
	Bridge    Poster
	Events    EventLookup
	Reconfig  Reconfigurer
	Log       *logging.Logger
}

func New(sched Scheduler, bridge Poster, events EventLookup, reconfig Reconfigurer, log *logging.Logger) *Interpreter {
	return &Interpreter{Scheduler: sched, Bridge: bridge, Events: events, Reconfig: reconfig, Log: log}
}

// Run reads lines from r until EOF or a `kill`/`exit`/`quit` command is
// processed, returning the exit signal requested (ExitNone on EOF with
// no such command).
func (in *Interpreter) Run(r io.Reader) ExitSignal {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if sig := in.Dispatch(scanner.Text()); sig != ExitNone {
			return sig
		}
	}
	return ExitNone
}

// Dispatch parses and executes a single control-channel line.
func (in *Interpreter) Dispatch(line string) ExitSignal {
	cmd, arg := splitCommand(line)
	if cmd == "" {
		return ExitNone
	}
	switch cmd {
	case "pause":
		in.Scheduler.Pause()
		in.record("pause", "", "scheduler paused")
	case "resume":
		in.Scheduler.Resume()
		in.record("resume", "", "scheduler resumed")
	case "exit", "quit":
		in.record(cmd, "", "graceful shutdown requested")
		return ExitGraceful
	case "kill":
		in.record("kill", "", "immediate shutdown requested")
		return ExitImmediate
	case "reset_conditions":
		names := fields(arg)
		in.Scheduler.ResetConditions(names...)
		in.record("reset_conditions", arg, "conditions reset")
	case "suspend_condition":
		name := strings.TrimSpace(arg)
		if name == "" {
			in.warn("suspend_condition", "missing condition name")
			break
		}
		in.Scheduler.SuspendCondition(name)
		in.record("suspend_condition", name, "condition suspended")
	case "resume_condition":
		name := strings.TrimSpace(arg)
		if name == "" {
			in.warn("resume_condition", "missing condition name")
			break
		}
		in.Scheduler.ResumeCondition(name)
		in.record("resume_condition", name, "condition resumed")
	case "trigger":
		in.trigger(strings.TrimSpace(arg))
	case "configure":
		in.configure(trimConfigureArg(arg))
	default:
		in.warn(cmd, fmt.Sprintf("unrecognized command %q", cmd))
	}
	return ExitNone
}

func (in *Interpreter) trigger(name string) {
	if name == "" {
		in.warn("trigger", "missing event name")
		return
	}
	e, ok := in.Events.Get(name)
	if !ok || e.Variant != model.EventCommand {
		in.warn("trigger", fmt.Sprintf("%q is not a command event", name))
		return
	}
	in.Bridge.Post(name)
	in.record("trigger", name, "event triggered")
}

func (in *Interpreter) configure(path string) {
	if path == "" {
		in.warn("configure", "missing configuration path")
		return
	}
	if in.Reconfig == nil {
		in.warn("configure", "reconfiguration unavailable")
		return
	}
	if err := in.Reconfig.Reconfigure(path); err != nil {
		in.Log.Record(logging.WhenProc, logging.StatusErr, "configure", "input", path, err.Error(), logging.LevelError)
		return
	}
	in.record("configure", path, "configuration reloaded")
}

func (in *Interpreter) record(cmd, arg, msg string) {
	if in.Log == nil {
		return
	}
	in.Log.Record(logging.WhenProc, logging.StatusOK, cmd, "input", arg, msg, logging.LevelInfo)
}

func (in *Interpreter) warn(cmd, msg string) {
	if in.Log == nil {
		return
	}
	in.Log.Record(logging.WhenProc, logging.StatusErr, cmd, "input", "", msg, logging.LevelWarn)
}

// splitCommand separates the leading command word from its argument
// substring, trimming surrounding whitespace from the command only.
func splitCommand(line string) (cmd, arg string) {
	trimmed := strings.TrimLeft(line, " \t\r\n")
	if trimmed == "" {
		return "", ""
	}
	i := strings.IndexAny(trimmed, " \t")
	if i < 0 {
		return trimmed, ""
	}
	return trimmed[:i], trimmed[i+1:]
}

func fields(s string) []string {
	return strings.Fields(s)
}

// trimConfigureArg implements §6.3's `configure` argument rule: the
// path is the first-non-blank-to-last-non-blank substring of the
// remainder of the line, with quotes and backslashes taken literally
// and no shell-style expansion performed.
func trimConfigureArg(arg string) string {
	return strings.Trim(arg, " \t\r\n")
}
