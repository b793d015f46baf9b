// Package task implements per-variant task (and, for the predicates
// that share the same execution machinery, condition) execution:
// Command via os/exec, Script via internal/scripting, Internal via a
// caller-supplied line handler. Command execution follows the familiar
// CommandContext/timeout/env-map shape, capturing stdout and stderr
// separately for the outcome-priority rules of §4.3.
package task

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/whenever-go/whenever/internal/model"
)

// CommandOutput is the result of a command run, kept separate from the
// outcome so callers can log stdout/stderr.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// RunCommand spawns spec.Executable with spec.Args in spec.StartupDir,
// applying the environment policy, and returns the captured stdout,
// stderr and exit code plus the outcome derived from §4.3's priority rules: explicit success_status,
// then explicit failure_status, then stdout/stderr patterns, else
// Undetermined.
func RunCommand(ctx context.Context, taskName, conditionName string, spec *model.CommandSpec) (model.Outcome, CommandOutput, error) {
	if fi, err := os.Stat(spec.StartupDir); err != nil || !fi.IsDir() {
		return model.OutcomeFailure, CommandOutput{}, fmt.Errorf("startup_path %q is not an existing directory", spec.StartupDir)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Executable, spec.Args...)
	cmd.Dir = spec.StartupDir
	cmd.Env = buildEnv(spec.Env, taskName, conditionName)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runCtx.Err() == context.DeadlineExceeded {
		out.TimedOut = true
		return model.OutcomeFailure, out, nil
	}
	if err != nil {
		if _, isExit := err.(*exec.ExitError); !isExit {
			return model.OutcomeFailure, out, fmt.Errorf("command failed to start: %w", err)
		}
	}

	return classifyOutcome(spec, out), out, nil
}

func buildEnv(policy model.EnvPolicy, taskName, conditionName string) []string {
	var env []string
	if policy.Inherit {
		env = append(env, os.Environ()...)
	}
	if policy.SetWhenever {
		if taskName != "" {
			env = append(env, "WHENEVER_TASK="+taskName)
		}
		env = append(env, "WHENEVER_CONDITION="+conditionName)
	}
	for k, v := range policy.Extra {
		env = append(env, k+"="+v)
	}
	return env
}

func classifyOutcome(spec *model.CommandSpec, out CommandOutput) model.Outcome {
	if spec.SuccessStatus != nil && out.ExitCode == *spec.SuccessStatus {
		return model.OutcomeSuccess
	}
	if spec.FailureStatus != nil && out.ExitCode == *spec.FailureStatus {
		return model.OutcomeFailure
	}
	if matchAny(spec.MatchStdout, out.Stdout, spec.Match) || matchAny(spec.MatchStderr, out.Stderr, spec.Match) {
		return model.OutcomeSuccess
	}
	if matchAny(spec.FailStdout, out.Stdout, spec.Match) || matchAny(spec.FailStderr, out.Stderr, spec.Match) {
		return model.OutcomeFailure
	}
	return model.OutcomeUndetermined
}

func matchAny(patterns []string, text string, flags model.MatchFlags) bool {
	if len(patterns) == 0 {
		return false
	}
	subject := text
	if !flags.CaseSensitive {
		subject = strings.ToLower(subject)
	}
	for _, p := range patterns {
		pat := p
		if !flags.CaseSensitive {
			pat = strings.ToLower(pat)
		}
		if flags.RegularExpr {
			expr := p
			if !flags.CaseSensitive {
				expr = "(?i)" + expr
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				continue
			}
			if re.MatchString(text) {
				return true
			}
			continue
		}
		if flags.Exact {
			if subject == pat {
				return true
			}
		} else if strings.Contains(subject, pat) {
			return true
		}
	}
	return false
}

// DefaultTimeout is zero, meaning no bound: RunCommand does not consult
// it, and a command runs without a time limit unless spec.Timeout is set.
const DefaultTimeout = 0 * time.Second
