package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/whenever-go/whenever/internal/model"
)

type fakeScheduler struct {
	paused       bool
	resetNames   []string
	suspended    []string
	resumed      []string
	gracefulHit  bool
	immediateHit bool
}

func (f *fakeScheduler) Pause()                         { f.paused = true }
func (f *fakeScheduler) Resume()                        { f.paused = false }
func (f *fakeScheduler) ExitGraceful()                  { f.gracefulHit = true }
func (f *fakeScheduler) ExitImmediate()                 { f.immediateHit = true }
func (f *fakeScheduler) ResetConditions(names ...string) { f.resetNames = names }
func (f *fakeScheduler) SuspendCondition(name string)    { f.suspended = append(f.suspended, name) }
func (f *fakeScheduler) ResumeCondition(name string)     { f.resumed = append(f.resumed, name) }

type fakePoster struct{ posted []string }

func (f *fakePoster) Post(name string) { f.posted = append(f.posted, name) }

type fakeEvents struct{ events map[string]*model.Event }

func (f *fakeEvents) Get(name string) (*model.Event, bool) {
	e, ok := f.events[name]
	return e, ok
}

type fakeReconfig struct {
	lastPath string
	err      error
}

func (f *fakeReconfig) Reconfigure(path string) error {
	f.lastPath = path
	return f.err
}

func newTestInterpreter() (*Interpreter, *fakeScheduler, *fakePoster, *fakeEvents, *fakeReconfig) {
	sched := &fakeScheduler{}
	poster := &fakePoster{}
	events := &fakeEvents{events: map[string]*model.Event{
		"cmd_evt": {Name: "cmd_evt", Variant: model.EventCommand},
		"fs_evt":  {Name: "fs_evt", Variant: model.EventFSChange},
	}}
	reconfig := &fakeReconfig{}
	return New(sched, poster, events, reconfig, nil), sched, poster, events, reconfig
}

func TestPauseResume(t *testing.T) {
	in, sched, _, _, _ := newTestInterpreter()
	assert.Equal(t, ExitNone, in.Dispatch("pause"))
	assert.True(t, sched.paused)
	assert.Equal(t, ExitNone, in.Dispatch("resume"))
	assert.False(t, sched.paused)
}

func TestExitAndKill(t *testing.T) {
	in, _, _, _, _ := newTestInterpreter()
	assert.Equal(t, ExitGraceful, in.Dispatch("exit"))
	assert.Equal(t, ExitGraceful, in.Dispatch("quit"))
	assert.Equal(t, ExitImmediate, in.Dispatch("kill"))
}

func TestResetConditionsNamesAndAll(t *testing.T) {
	in, sched, _, _, _ := newTestInterpreter()
	in.Dispatch("reset_conditions c1 c2")
	assert.Equal(t, []string{"c1", "c2"}, sched.resetNames)

	in.Dispatch("reset_conditions")
	assert.Empty(t, sched.resetNames)
}

func TestSuspendResumeCondition(t *testing.T) {
	in, sched, _, _, _ := newTestInterpreter()
	in.Dispatch("suspend_condition c1")
	in.Dispatch("resume_condition c1")
	assert.Equal(t, []string{"c1"}, sched.suspended)
	assert.Equal(t, []string{"c1"}, sched.resumed)
}

func TestTriggerOnlyFiresCommandEvents(t *testing.T) {
	in, _, poster, _, _ := newTestInterpreter()
	in.Dispatch("trigger cmd_evt")
	assert.Equal(t, []string{"cmd_evt"}, poster.posted)

	in.Dispatch("trigger fs_evt")
	assert.Equal(t, []string{"cmd_evt"}, poster.posted)

	in.Dispatch("trigger missing_evt")
	assert.Equal(t, []string{"cmd_evt"}, poster.posted)
}

func TestConfigurePassesTrimmedPath(t *testing.T) {
	in, _, _, _, reconfig := newTestInterpreter()
	in.Dispatch("configure   /etc/whenever/config.toml  ")
	assert.Equal(t, "/etc/whenever/config.toml", reconfig.lastPath)
}

func TestRunStopsOnKill(t *testing.T) {
	in, _, _, _, _ := newTestInterpreter()
	r := strings.NewReader("pause\nkill\nresume\n")
	sig := in.Run(r)
	assert.Equal(t, ExitImmediate, sig)
}

func TestUnknownCommandIsIgnoredNotFatal(t *testing.T) {
	in, _, _, _, _ := newTestInterpreter()
	assert.Equal(t, ExitNone, in.Dispatch("frobnicate something"))
}

func TestBlankLineIsNoop(t *testing.T) {
	in, _, _, _, _ := newTestInterpreter()
	assert.Equal(t, ExitNone, in.Dispatch("   "))
}
