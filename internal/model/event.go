package model

import "reflect"

// FSChangeSpec holds the fields specific to a filesystem-change event.
type FSChangeSpec struct {
	Paths       []string
	Recursive   bool
	PollSeconds int // fallback polling interval when no notify facility is available
}

// DBusSignalSpec holds the fields specific to a DBus-signal event.
type DBusSignalSpec struct {
	Bus       string
	Interface string
	Member    string
	Path      string
	Checks    []ParamCheck
	CheckAll  bool
}

// WMIEventSpec holds the fields specific to a WMI event subscription.
type WMIEventSpec struct {
	Query string
}

// CommandEventSpec marks a Command-type event: it has no listener and is
// only ever fired via the `trigger` input command.
type CommandEventSpec struct{}

// Event is the immutable configuration of an event item (§3, §4.5). It
// references exactly one Bucket condition by name.
type Event struct {
	Name      string
	Variant   EventVariant
	Condition string // name of the associated Bucket condition

	FSChange   *FSChangeSpec
	DBusSignal *DBusSignalSpec
	WMI        *WMIEventSpec
	Command    *CommandEventSpec
}

// Equal reports whether two event definitions are structurally
// identical, used by the reconfiguration engine.
func (e *Event) Equal(o *Event) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Name != o.Name || e.Variant != o.Variant || e.Condition != o.Condition {
		return false
	}
	switch e.Variant {
	case EventFSChange:
		return reflect.DeepEqual(e.FSChange, o.FSChange)
	case EventDBusSignal:
		return reflect.DeepEqual(e.DBusSignal, o.DBusSignal)
	case EventWMI:
		return reflect.DeepEqual(e.WMI, o.WMI)
	case EventCommand:
		return true
	}
	return false
}
