// Package event runs one listener goroutine per configured Event
// (§4.5): FSChange via fsnotify with a poll fallback, DBusSignal via
// internal/dbusclient, WMI via internal/wmiclient, and Command (which
// has no listener at all — fed only by the `trigger` input command).
// Each listener follows a one-goroutine-per-long-lived-concern,
// context-cancellable pattern.
package event

import (
	"context"
	"time"

	"github.com/whenever-go/whenever/internal/checks"
	"github.com/whenever-go/whenever/internal/dbusclient"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/wmiclient"
)

// Poster posts a fired notification for an event name into the bridge.
type Poster interface {
	Post(eventName string)
}

// Manager starts and stops per-event listener goroutines.
type Manager struct {
	Bridge Poster
	DBus   *dbusclient.Client
	Log    *logging.Logger

	cancels map[string]context.CancelFunc
}

func NewManager(bridge Poster, log *logging.Logger) *Manager {
	return &Manager{Bridge: bridge, Log: log, cancels: make(map[string]context.CancelFunc)}
}

// Start launches a listener for e, if its variant has one.
func (m *Manager) Start(ctx context.Context, e *model.Event) {
	if m.cancels == nil {
		m.cancels = make(map[string]context.CancelFunc)
	}
	lctx, cancel := context.WithCancel(ctx)
	m.cancels[e.Name] = cancel

	switch e.Variant {
	case model.EventFSChange:
		go m.runFSChange(lctx, e)
	case model.EventDBusSignal:
		go m.runDBusSignal(lctx, e)
	case model.EventWMI:
		go m.runWMI(lctx, e)
	case model.EventCommand:
		// no listener; fed by the `trigger` input command.
	}
}

// Stop cancels e's listener, if running.
func (m *Manager) Stop(name string) {
	if cancel, ok := m.cancels[name]; ok {
		cancel()
		delete(m.cancels, name)
	}
}

func (m *Manager) fire(e *model.Event) {
	m.Bridge.Post(e.Name)
	m.Log.Record(logging.WhenProc, logging.StatusOK, "fire", "event", e.Name, "event fired", logging.LevelDebug)
}

func (m *Manager) runDBusSignal(ctx context.Context, e *model.Event) {
	spec := e.DBusSignal
	bus := dbusclient.BusSession
	if spec.Bus == ":system" || spec.Bus == "system" {
		bus = dbusclient.BusSystem
	}
	conn, err := dbusclient.Connect(bus)
	if err != nil {
		m.Log.Record(logging.WhenInit, logging.StatusErr, "subscribe", "event", e.Name, err.Error(), logging.LevelError)
		return
	}
	defer conn.Close()

	sigs, err := conn.Subscribe(ctx, spec.Interface, spec.Member, spec.Path)
	if err != nil {
		m.Log.Record(logging.WhenInit, logging.StatusErr, "subscribe", "event", e.Name, err.Error(), logging.LevelError)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigs:
			if !ok {
				return
			}
			if checks.EvaluateParamChecks(sig.Body, spec.Checks, spec.CheckAll) {
				m.fire(e)
			}
		}
	}
}

func (m *Manager) runWMI(ctx context.Context, e *model.Event) {
	const pollInterval = 5 * time.Second
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rows, err := wmiclient.Query(e.WMI.Query)
			if err != nil {
				m.Log.Record(logging.WhenProc, logging.StatusErr, "query", "event", e.Name, err.Error(), logging.LevelWarn)
				continue
			}
			if len(rows) > 0 {
				m.fire(e)
			}
		}
	}
}
