package model

import (
	"reflect"
	"time"
)

// Condition is the immutable configuration of a condition item (§3).
// Mutable state lives separately in ConditionState, owned exclusively by
// the condition state machine.
type Condition struct {
	Name    string
	Variant ConditionVariant

	Recurring         bool
	MaxTasksRetries   int // >= -1; -1 = unlimited
	ExecuteSequence   bool
	BreakOnSuccess    bool
	BreakOnFailure    bool
	Suspended         bool
	Tasks             []string // ordered list of task names

	CheckAfter             time.Duration
	RecurAfterFailedCheck  bool

	Interval *IntervalSpec
	Time     *TimeCondSpec
	Idle     *IdleSpec
	Command  *CommandSpec
	Script   *ScriptSpec
	DBus     *DBusSpec
	WMI      *WMISpec
	Bucket   *BucketSpec
}

// Equal reports whether two condition definitions are structurally
// identical, used by the reconfiguration engine.
func (c *Condition) Equal(o *Condition) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Name != o.Name || c.Variant != o.Variant ||
		c.Recurring != o.Recurring || c.MaxTasksRetries != o.MaxTasksRetries ||
		c.ExecuteSequence != o.ExecuteSequence || c.BreakOnSuccess != o.BreakOnSuccess ||
		c.BreakOnFailure != o.BreakOnFailure || c.Suspended != o.Suspended ||
		c.CheckAfter != o.CheckAfter || c.RecurAfterFailedCheck != o.RecurAfterFailedCheck {
		return false
	}
	if !stringSliceEqual(c.Tasks, o.Tasks) {
		return false
	}
	switch c.Variant {
	case CondInterval:
		return c.Interval != nil && o.Interval != nil && *c.Interval == *o.Interval
	case CondTime:
		return reflect.DeepEqual(c.Time, o.Time)
	case CondIdle:
		return c.Idle != nil && o.Idle != nil && *c.Idle == *o.Idle
	case CondCommand:
		return commandSpecEqual(c.Command, o.Command)
	case CondScript:
		return scriptSpecEqual(c.Script, o.Script)
	case CondDBus:
		return reflect.DeepEqual(c.DBus, o.DBus)
	case CondWMI:
		return reflect.DeepEqual(c.WMI, o.WMI)
	case CondBucket:
		return true
	}
	return false
}

// ConditionState is the mutable, runtime state of a condition (§3),
// owned exclusively by the condition state machine. Guarded by a
// per-condition lock in the owner.
type ConditionState struct {
	Status           ConditionStatus
	LastCheckTime    time.Time
	LastFireTime     time.Time
	LastTaskOutcome  Outcome
	RemainingRetries int
	LastSuccessStable bool
	IdleFired        bool
	Busy             bool
	StartupTime      time.Time
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func commandSpecEqual(a, b *CommandSpec) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func scriptSpecEqual(a, b *ScriptSpec) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
