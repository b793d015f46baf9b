package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinesOrderAndContent(t *testing.T) {
	table := Table{DBus: true, WMI: false, Script: true, History: false}
	lines := table.Lines()
	assert.Equal(t, []string{
		"dbus: yes",
		"wmi: no",
		"script: yes",
		"history: no",
	}, lines)
}

func TestLinesAllDisabled(t *testing.T) {
	table := Table{}
	lines := table.Lines()
	for _, l := range lines {
		assert.Contains(t, l, ": no")
	}
}
