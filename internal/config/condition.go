package config

import (
	"time"

	"github.com/whenever-go/whenever/internal/model"
)

var commonConditionKeys = []string{
	"name", "type", "tags", "recurring", "max_tasks_retries",
	"execute_sequence", "break_on_success", "break_on_failure",
	"suspended", "tasks", "check_after", "recur_after_failed_check",
}

func decodeCondition(raw m, knownTasks map[string]bool) (*model.Condition, error) {
	name, err := raw.mandatoryStr("name")
	if err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	typ, err := raw.mandatoryStr("type")
	if err != nil {
		return nil, wrapItem("condition", name, err)
	}

	c := &model.Condition{
		Name:                  name,
		Recurring:             raw.boolOr("recurring", false),
		MaxTasksRetries:       raw.intOr("max_tasks_retries", -1),
		ExecuteSequence:       raw.boolOr("execute_sequence", true),
		BreakOnSuccess:        raw.boolOr("break_on_success", false),
		BreakOnFailure:        raw.boolOr("break_on_failure", false),
		Suspended:             raw.boolOr("suspended", false),
		Tasks:                 raw.strSlice("tasks"),
		CheckAfter:            raw.durationSecondsOr("check_after", 0),
		RecurAfterFailedCheck: raw.boolOr("recur_after_failed_check", false),
	}
	for _, tn := range c.Tasks {
		if !knownTasks[tn] {
			return nil, wrapItem("condition", name, errf(kindUnknownName, "unknown task %q", tn))
		}
	}

	switch typ {
	case "interval":
		c.Variant = model.CondInterval
		if err := raw.checkKeys(append(commonConditionKeys, "interval_seconds")...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.Interval = &model.IntervalSpec{Interval: raw.durationSecondsOr("interval_seconds", 0)}
		if c.Interval.Interval <= 0 {
			return nil, wrapItem("condition", name, errf(kindInvalidValue, "interval_seconds must be > 0"))
		}
	case "time":
		c.Variant = model.CondTime
		if err := raw.checkKeys(append(commonConditionKeys, "specs", "cron")...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		spec, err := decodeTimeSpec(raw)
		if err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.Time = spec
	case "idle":
		c.Variant = model.CondIdle
		if err := raw.checkKeys(append(commonConditionKeys, "idle_seconds")...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.Idle = &model.IdleSpec{IdleSeconds: raw.durationSecondsOr("idle_seconds", 0)}
	case "command":
		c.Variant = model.CondCommand
		if err := raw.checkKeys(append(commonConditionKeys, commandTaskKeys[2:]...)...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		spec, err := decodeCommandSpec(raw)
		if err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.Command = spec
	case "script":
		c.Variant = model.CondScript
		if err := raw.checkKeys(append(commonConditionKeys, scriptTaskKeys[2:]...)...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		spec, err := decodeScriptSpec(raw)
		if err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.Script = spec
	case "dbus":
		c.Variant = model.CondDBus
		if err := raw.checkKeys(append(commonConditionKeys,
			"bus", "service", "object", "interface", "method",
			"parameters", "parameter_check", "parameter_check_all")...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		spec, err := decodeDBusSpec(raw)
		if err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.DBus = spec
	case "wmi":
		c.Variant = model.CondWMI
		if err := raw.checkKeys(append(commonConditionKeys,
			"query", "result_check", "result_check_all")...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		spec, err := decodeWMISpec(raw)
		if err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.WMI = spec
	case "bucket":
		c.Variant = model.CondBucket
		if err := raw.checkKeys(commonConditionKeys...); err != nil {
			return nil, wrapItem("condition", name, err)
		}
		c.Bucket = &model.BucketSpec{}
	default:
		return nil, wrapItem("condition", name, errf(kindInvalidValue, "unknown condition type %q", typ))
	}
	return c, nil
}

func decodeTimeSpec(raw m) (*model.TimeCondSpec, error) {
	spec := &model.TimeCondSpec{}
	if cronExpr, ok := raw.str("cron"); ok {
		ts, err := cronToTimeSpec(cronExpr)
		if err != nil {
			return nil, err
		}
		spec.Specs = append(spec.Specs, ts)
	}
	for _, e := range raw.list("specs") {
		cm, ok := asMap(e)
		if !ok {
			return nil, errf(kindInvalidType, "time spec entry must be a table")
		}
		if err := cm.checkKeys("year", "month", "day", "weekday", "hour", "minute", "second"); err != nil {
			return nil, err
		}
		spec.Specs = append(spec.Specs, model.TimeSpec{
			Year:    cm.intPtr("year"),
			Month:   cm.intPtr("month"),
			Day:     cm.intPtr("day"),
			Weekday: weekdayPtr(cm.intPtr("weekday")),
			Hour:    cm.intPtr("hour"),
			Minute:  cm.intPtr("minute"),
			Second:  cm.intPtr("second"),
		})
	}
	if len(spec.Specs) == 0 {
		return nil, errf(kindMissingField, "time condition needs at least one of specs/cron")
	}
	return spec, nil
}

func weekdayPtr(i *int) *time.Weekday {
	if i == nil {
		return nil
	}
	w := time.Weekday(*i)
	return &w
}

func decodeDBusSpec(raw m) (*model.DBusSpec, error) {
	bus, err := raw.mandatoryStr("bus")
	if err != nil {
		return nil, err
	}
	service, err := raw.mandatoryStr("service")
	if err != nil {
		return nil, err
	}
	object, err := raw.mandatoryStr("object")
	if err != nil {
		return nil, err
	}
	iface, err := raw.mandatoryStr("interface")
	if err != nil {
		return nil, err
	}
	method, err := raw.mandatoryStr("method")
	if err != nil {
		return nil, err
	}
	checks, err := decodeChecks(raw.list("parameter_check"))
	if err != nil {
		return nil, err
	}
	return &model.DBusSpec{
		Bus:       bus,
		Service:   service,
		Object:    object,
		Interface: iface,
		Method:    method,
		Params:    raw.list("parameters"),
		Checks:    checks,
		CheckAll:  raw.boolOr("parameter_check_all", true),
	}, nil
}

func decodeWMISpec(raw m) (*model.WMISpec, error) {
	query, err := raw.mandatoryStr("query")
	if err != nil {
		return nil, err
	}
	checks, err := decodeChecks(raw.list("result_check"))
	if err != nil {
		return nil, err
	}
	return &model.WMISpec{
		Query:    query,
		Checks:   checks,
		CheckAll: raw.boolOr("result_check_all", true),
	}, nil
}
