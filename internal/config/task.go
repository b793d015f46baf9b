package config

import (
	"github.com/whenever-go/whenever/internal/model"
)

func decodeTask(raw m) (*model.Task, error) {
	name, err := raw.mandatoryStr("name")
	if err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	typ, err := raw.mandatoryStr("type")
	if err != nil {
		return nil, wrapItem("task", name, err)
	}

	t := &model.Task{Name: name}
	switch typ {
	case "command":
		t.Variant = model.TaskCommand
		if err := raw.checkKeys(commandTaskKeys...); err != nil {
			return nil, wrapItem("task", name, err)
		}
		spec, err := decodeCommandSpec(raw)
		if err != nil {
			return nil, wrapItem("task", name, err)
		}
		t.Command = spec
	case "script":
		t.Variant = model.TaskScript
		if err := raw.checkKeys(scriptTaskKeys...); err != nil {
			return nil, wrapItem("task", name, err)
		}
		spec, err := decodeScriptSpec(raw)
		if err != nil {
			return nil, wrapItem("task", name, err)
		}
		t.Script = spec
	case "internal":
		t.Variant = model.TaskInternal
		if err := raw.checkKeys("name", "type", "command", "tags"); err != nil {
			return nil, wrapItem("task", name, err)
		}
		cmd, err := raw.mandatoryStr("command")
		if err != nil {
			return nil, wrapItem("task", name, err)
		}
		t.Internal = &model.InternalSpec{Command: cmd}
	default:
		return nil, errf(kindInvalidValue, "unknown task type %q", typ)
	}
	return t, nil
}

var commandTaskKeys = []string{
	"name", "type", "tags", "startup_path", "command", "args",
	"success_status", "failure_status", "match_stdout", "match_stderr",
	"failure_stdout", "failure_stderr",
	"match_exact", "match_regular_expression", "case_sensitive",
	"timeout_seconds", "include_environment", "set_whenever_variables",
	"environment_variables",
}

var scriptTaskKeys = []string{
	"name", "type", "tags", "script", "expect_all", "expected",
	"set_variables", "init_script",
}

func decodeCommandSpec(raw m) (*model.CommandSpec, error) {
	startup, err := raw.mandatoryStr("startup_path")
	if err != nil {
		return nil, err
	}
	cmd, err := raw.mandatoryStr("command")
	if err != nil {
		return nil, err
	}
	spec := &model.CommandSpec{
		StartupDir:    startup,
		Executable:    cmd,
		Args:          raw.strSlice("args"),
		SuccessStatus: raw.intPtr("success_status"),
		FailureStatus: raw.intPtr("failure_status"),
		MatchStdout:   raw.strSlice("match_stdout"),
		MatchStderr:   raw.strSlice("match_stderr"),
		FailStdout:    raw.strSlice("failure_stdout"),
		FailStderr:    raw.strSlice("failure_stderr"),
		Match: model.MatchFlags{
			Exact:         raw.boolOr("match_exact", true),
			RegularExpr:   raw.boolOr("match_regular_expression", false),
			CaseSensitive: raw.boolOr("case_sensitive", true),
		},
		Timeout: raw.durationSecondsOr("timeout_seconds", 0),
		Env: model.EnvPolicy{
			Inherit:     raw.boolOr("include_environment", true),
			SetWhenever: raw.boolOr("set_whenever_variables", true),
			Extra:       raw.stringMap("environment_variables"),
		},
	}
	return spec, nil
}

func decodeScriptSpec(raw m) (*model.ScriptSpec, error) {
	script, err := raw.mandatoryStr("script")
	if err != nil {
		return nil, err
	}
	initScript, _ := raw.str("init_script")
	spec := &model.ScriptSpec{
		Source:     script,
		Expected:   raw.anyMap("expected"),
		ExpectAll:  raw.boolOr("expect_all", true),
		PreGlobals: raw.anyMap("set_variables"),
		InitScript: initScript,
	}
	return spec, nil
}
