// Package capabilities reports which optional collaborators this build
// has compiled in, answering --options (§6.2, Part D). Deliberately
// stdlib-only: a struct of bools populated by each adapter's own probe,
// not a library concern.
package capabilities

import "fmt"

// Table lists the optional features and whether each is available.
type Table struct {
	DBus    bool
	WMI     bool
	Script  bool
	History bool
}

// Lines renders the table the way --options prints it: one
// "name: yes|no" line per feature, in a fixed order.
func (t Table) Lines() []string {
	render := func(ok bool) string {
		if ok {
			return "yes"
		}
		return "no"
	}
	return []string{
		fmt.Sprintf("dbus: %s", render(t.DBus)),
		fmt.Sprintf("wmi: %s", render(t.WMI)),
		fmt.Sprintf("script: %s", render(t.Script)),
		fmt.Sprintf("history: %s", render(t.History)),
	}
}
