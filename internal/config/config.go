package config

import (
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/whenever-go/whenever/internal/model"
)

// Globals are the top-level scalar parameters (§3 defaults, §4.1).
// These are read once at process start and are NOT changed by
// reconfiguration (§4.8).
type Globals struct {
	SchedulerTickSeconds        int
	RandomizeChecksWithinTicks  bool
}

// Config is a fully decoded, validated configuration: the three
// registries' worth of items plus the global parameters.
type Config struct {
	Globals    Globals
	Tasks      []*model.Task
	Conditions []*model.Condition
	Events     []*model.Event
}

// Features reports which optional collaborators are available, used to
// reject DBus/WMI items referenced without the corresponding feature
// (§6.1) and to answer --options (§6.2, Part D).
type Features struct {
	DBus bool
	WMI  bool
}

var topLevelKeys = []string{
	"task", "condition", "event",
	"scheduler_tick_seconds", "randomize_checks_within_ticks", "tags",
}

// Load reads and validates a configuration file. On any parse or
// validation error the returned error carries enough detail for §7's
// "refuse the change, keep the live configuration" handling.
func Load(path string, features Features) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, features)
}

// Parse validates and decodes raw TOML bytes into a Config.
func Parse(data []byte, features Features) (*Config, error) {
	var root map[string]any
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, errf(kindParse, "%v", err)
	}
	top := m(root)
	if err := top.checkKeys(topLevelKeys...); err != nil {
		return nil, err
	}
	if tagsV, ok := top["tags"]; ok {
		if _, isList := tagsV.([]any); !isList {
			if _, isMap := asMap(tagsV); !isMap {
				return nil, errf(kindInvalidType, "top-level tags must be a list or table")
			}
		}
	}

	cfg := &Config{
		Globals: Globals{
			SchedulerTickSeconds:       top.intOr("scheduler_tick_seconds", 5),
			RandomizeChecksWithinTicks: top.boolOr("randomize_checks_within_ticks", false),
		},
	}
	if cfg.Globals.SchedulerTickSeconds < 1 {
		return nil, errf(kindInvalidValue, "scheduler_tick_seconds must be >= 1")
	}

	knownTasks := map[string]bool{}
	for _, raw := range top.list("task") {
		tm, ok := asMap(raw)
		if !ok {
			return nil, errf(kindInvalidType, "task entries must be tables")
		}
		task, err := decodeTask(tm)
		if err != nil {
			return nil, err
		}
		if knownTasks[task.Name] {
			return nil, errf(kindInvalidValue, "duplicate task name %q", task.Name)
		}
		knownTasks[task.Name] = true
		cfg.Tasks = append(cfg.Tasks, task)
	}

	knownConditions := map[string]bool{}
	knownBuckets := map[string]bool{}
	for _, raw := range top.list("condition") {
		cm, ok := asMap(raw)
		if !ok {
			return nil, errf(kindInvalidType, "condition entries must be tables")
		}
		cond, err := decodeCondition(cm, knownTasks)
		if err != nil {
			return nil, err
		}
		if cond.Variant == model.CondDBus && !features.DBus {
			return nil, wrapItem("condition", cond.Name, errf(kindFeatureOff, "dbus feature not available"))
		}
		if cond.Variant == model.CondWMI && !features.WMI {
			return nil, wrapItem("condition", cond.Name, errf(kindFeatureOff, "wmi feature not available"))
		}
		if knownConditions[cond.Name] {
			return nil, errf(kindInvalidValue, "duplicate condition name %q", cond.Name)
		}
		knownConditions[cond.Name] = true
		if cond.Variant == model.CondBucket {
			knownBuckets[cond.Name] = true
		}
		cfg.Conditions = append(cfg.Conditions, cond)
	}

	knownEvents := map[string]bool{}
	for _, raw := range top.list("event") {
		em, ok := asMap(raw)
		if !ok {
			return nil, errf(kindInvalidType, "event entries must be tables")
		}
		ev, err := decodeEvent(em, knownBuckets)
		if err != nil {
			return nil, err
		}
		if ev.Variant == model.EventDBusSignal && !features.DBus {
			return nil, wrapItem("event", ev.Name, errf(kindFeatureOff, "dbus feature not available"))
		}
		if ev.Variant == model.EventWMI && !features.WMI {
			return nil, wrapItem("event", ev.Name, errf(kindFeatureOff, "wmi feature not available"))
		}
		if knownEvents[ev.Name] {
			return nil, errf(kindInvalidValue, "duplicate event name %q", ev.Name)
		}
		knownEvents[ev.Name] = true
		cfg.Events = append(cfg.Events, ev)
	}

	return cfg, nil
}

// TickInterval returns the globals' tick period as a time.Duration.
func (g Globals) TickInterval() time.Duration {
	return time.Duration(g.SchedulerTickSeconds) * time.Second
}
