package model

import "time"

// MatchFlags controls how stdout/stderr pattern matching is performed
// for Command tasks and the Command condition predicate.
type MatchFlags struct {
	Exact         bool
	RegularExpr   bool
	CaseSensitive bool
}

// EnvPolicy controls which environment variables a spawned child
// process receives.
type EnvPolicy struct {
	Inherit     bool
	SetWhenever bool // set WHENEVER_TASK / WHENEVER_CONDITION
	Extra       map[string]string
}

// CommandSpec holds the fields specific to a Command task (and, shared,
// the Command condition predicate).
type CommandSpec struct {
	StartupDir    string
	Executable    string
	Args          []string
	SuccessStatus  *int
	FailureStatus  *int
	MatchStdout    []string // success patterns
	MatchStderr    []string // success patterns
	FailStdout     []string // failure patterns
	FailStderr     []string // failure patterns
	Match          MatchFlags
	Timeout       time.Duration
	Env           EnvPolicy
}

// ScriptSpec holds the fields specific to a Script task (and, shared,
// the Script condition predicate).
type ScriptSpec struct {
	Source     string
	Expected   map[string]any
	ExpectAll  bool
	PreGlobals map[string]any
	InitScript string
}

// InternalSpec holds the fields specific to an Internal task: a single
// command line using the same grammar as the input-command interpreter.
type InternalSpec struct {
	Command string
}

// Task is the immutable-after-load definition of a task.
type Task struct {
	Name    string
	Variant TaskVariant

	Command  *CommandSpec
	Script   *ScriptSpec
	Internal *InternalSpec
}

// Equal reports whether two task definitions are structurally identical,
// used by the reconfiguration engine to decide whether to preserve an
// unchanged item.
func (t *Task) Equal(o *Task) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Name != o.Name || t.Variant != o.Variant {
		return false
	}
	switch t.Variant {
	case TaskCommand:
		return commandSpecEqual(t.Command, o.Command)
	case TaskScript:
		return scriptSpecEqual(t.Script, o.Script)
	case TaskInternal:
		return t.Internal != nil && o.Internal != nil && t.Internal.Command == o.Internal.Command
	}
	return false
}
