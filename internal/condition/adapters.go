package condition

import (
	"context"
	"sync"
	"time"

	"github.com/whenever-go/whenever/internal/dbusclient"
	"github.com/whenever-go/whenever/internal/idle"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/scripting"
	"github.com/whenever-go/whenever/internal/task"
	"github.com/whenever-go/whenever/internal/wmiclient"
)

// TaskCommandRunner adapts internal/task.RunCommand to CommandRunner.
type TaskCommandRunner struct{}

func (TaskCommandRunner) RunCommand(ctx context.Context, name, conditionName string, spec *model.CommandSpec) (model.Outcome, error) {
	outcome, _, err := task.RunCommand(ctx, name, conditionName, spec)
	return outcome, err
}

// TaskScriptRunner adapts internal/task.RunScript to ScriptRunner.
type TaskScriptRunner struct {
	Log scripting.Logger
}

func (r TaskScriptRunner) RunScript(name, conditionName string, spec *model.ScriptSpec) (model.Outcome, error) {
	return task.RunScript(name, conditionName, spec, r.Log)
}

// IdleHostSource adapts internal/idle to IdleSource.
type IdleHostSource struct {
	Source idle.Source
}

func (s IdleHostSource) IdleTime() (time.Duration, error) { return s.Source.IdleTime() }

// DBusCallAdapter adapts internal/dbusclient to DBusCaller, opening a
// connection per bus name on first use and caching it.
type DBusCallAdapter struct {
	mu    sync.Mutex
	conns map[dbusclient.Bus]*dbusclient.Client
}

func NewDBusCallAdapter() *DBusCallAdapter {
	return &DBusCallAdapter{conns: make(map[dbusclient.Bus]*dbusclient.Client)}
}

func (a *DBusCallAdapter) conn(bus string) (*dbusclient.Client, error) {
	b := dbusclient.BusSession
	if bus == ":system" || bus == "system" {
		b = dbusclient.BusSystem
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.conns[b]; ok {
		return c, nil
	}
	c, err := dbusclient.Connect(b)
	if err != nil {
		return nil, err
	}
	a.conns[b] = c
	return c, nil
}

func (a *DBusCallAdapter) Call(ctx context.Context, bus, service, object, iface, method string, params []any) ([]any, error) {
	c, err := a.conn(bus)
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, service, object, iface, method, params)
}

// WMIQueryAdapter adapts internal/wmiclient to WMIQuerier.
type WMIQueryAdapter struct{}

func (WMIQueryAdapter) Query(query string) ([]map[string]any, error) {
	return wmiclient.Query(query)
}
