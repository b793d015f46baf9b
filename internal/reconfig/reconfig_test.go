package reconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whenever-go/whenever/internal/config"
	"github.com/whenever-go/whenever/internal/event"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/registry"
)

type fakeBridge struct {
	bound   map[string]string
	unbound []string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{bound: make(map[string]string)}
}

func (f *fakeBridge) Bind(eventName, conditionName string) { f.bound[eventName] = conditionName }
func (f *fakeBridge) Unbind(eventName string)               { f.unbound = append(f.unbound, eventName) }
func (f *fakeBridge) Post(string)                           {}

func newEngine(t *testing.T) (*Engine, *fakeBridge) {
	t.Helper()
	tasks := registry.NewTaskRegistry()
	conditions := registry.NewConditionRegistry()
	events := registry.NewEventRegistry()
	log := logging.NewNop()
	listeners := event.NewManager(newFakeBridge(), log)
	bridge := newFakeBridge()
	return New(tasks, conditions, events, listeners, bridge, log, config.Features{}), bridge
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "whenever.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const baseConfig = `
scheduler_tick_seconds = 5

[[condition]]
name = "i1"
type = "interval"
recurring = true
interval_seconds = 10

[[task]]
name = "t1"
type = "internal"
command = "pause"
`

func TestReconfigurePreservesUnchangedConditionState(t *testing.T) {
	eng, _ := newEngine(t)
	path := writeConfig(t, baseConfig)
	require.NoError(t, eng.Reconfigure(path))

	st, ok := eng.Conditions.State("i1")
	require.True(t, ok)
	st.LastFireTime = st.LastFireTime.Add(1) // mutate to a distinguishable sentinel
	sentinel := st.LastFireTime

	require.NoError(t, eng.Reconfigure(path))

	st2, ok := eng.Conditions.State("i1")
	require.True(t, ok)
	assert.Equal(t, sentinel, st2.LastFireTime, "unchanged condition must keep its runtime state")
}

func TestReconfigureAddsNewItemFresh(t *testing.T) {
	eng, _ := newEngine(t)
	require.NoError(t, eng.Reconfigure(writeConfig(t, baseConfig)))

	withNew := baseConfig + `
[[condition]]
name = "i2"
type = "interval"
recurring = true
interval_seconds = 20
`
	require.NoError(t, eng.Reconfigure(writeConfig(t, withNew)))

	_, ok := eng.Conditions.Get("i2")
	assert.True(t, ok)
	st, ok := eng.Conditions.State("i2")
	require.True(t, ok)
	assert.Equal(t, model.StatusIdle, st.Status)
}

func TestReconfigureRemovesDisappearedItem(t *testing.T) {
	eng, _ := newEngine(t)
	require.NoError(t, eng.Reconfigure(writeConfig(t, baseConfig)))

	require.NoError(t, eng.Reconfigure(writeConfig(t, `scheduler_tick_seconds = 5`)))

	_, ok := eng.Conditions.Get("i1")
	assert.False(t, ok)
	_, ok = eng.Tasks.Get("t1")
	assert.False(t, ok)
}

func TestReconfigureRejectsInvalidFileKeepsLiveConfig(t *testing.T) {
	eng, _ := newEngine(t)
	require.NoError(t, eng.Reconfigure(writeConfig(t, baseConfig)))

	err := eng.Reconfigure(writeConfig(t, "this is not valid toml [[["))
	assert.Error(t, err)

	_, ok := eng.Conditions.Get("i1")
	assert.True(t, ok, "live configuration must be untouched on parse error")
}
