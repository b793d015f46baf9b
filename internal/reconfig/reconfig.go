// Package reconfig implements the hot-reload diff-merge engine (§4.8):
// on `configure <path>`, parse the new file, then for each item compare
// its structural definition against the live one. Structurally
// unchanged items keep their runtime state; changed or new items
// replace/install fresh; items that disappeared are torn down. Any
// parse or validation error leaves the live configuration untouched.
// Grounded on `original_source/src/config.rs`'s "build new registries,
// diff, replace-or-keep" shape.
package reconfig

import (
	"context"

	"github.com/whenever-go/whenever/internal/config"
	"github.com/whenever-go/whenever/internal/event"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/registry"
)

// Bridge is the subset of *bridge.Bridge the engine needs to rewire
// event-to-condition bindings for replaced/new/removed items.
type Bridge interface {
	Bind(eventName, conditionName string)
	Unbind(eventName string)
}

// Engine owns the live registries and the collaborators needed to
// start/stop event listeners and rebind the bridge during a reload.
type Engine struct {
	Tasks      *registry.TaskRegistry
	Conditions *registry.ConditionRegistry
	Events     *registry.EventRegistry
	Listeners  *event.Manager
	Bridge     Bridge
	Log        *logging.Logger
	Features   config.Features
}

func New(tasks *registry.TaskRegistry, conditions *registry.ConditionRegistry, events *registry.EventRegistry, listeners *event.Manager, bridge Bridge, log *logging.Logger, features config.Features) *Engine {
	return &Engine{Tasks: tasks, Conditions: conditions, Events: events, Listeners: listeners, Bridge: bridge, Log: log, Features: features}
}

// Reconfigure parses path and merges it into the live registries (§4.8).
// Global parameters (scheduler_tick_seconds, randomize_checks_within_ticks)
// are never touched here — only task/condition/event items.
func (e *Engine) Reconfigure(path string) error {
	return e.ReconfigureContext(context.Background(), path)
}

// ReconfigureContext is Reconfigure with an explicit context, used to
// cancel newly-started listeners if the caller itself is shutting down.
func (e *Engine) ReconfigureContext(ctx context.Context, path string) error {
	cfg, err := config.Load(path, e.Features)
	if err != nil {
		e.Log.Record(logging.WhenProc, logging.StatusErr, "configure", "reconfig", path, err.Error(), logging.LevelError)
		return err
	}

	newTasks := make(map[string]*model.Task, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		newTasks[t.Name] = t
	}
	newConditions := make(map[string]*model.Condition, len(cfg.Conditions))
	for _, c := range cfg.Conditions {
		newConditions[c.Name] = c
	}
	newEvents := make(map[string]*model.Event, len(cfg.Events))
	for _, ev := range cfg.Events {
		newEvents[ev.Name] = ev
	}

	e.mergeTasks(newTasks)
	e.mergeEvents(ctx, newEvents)
	e.mergeConditions(newConditions)

	return nil
}

func (e *Engine) mergeTasks(newTasks map[string]*model.Task) {
	for _, name := range e.Tasks.Names() {
		if _, ok := newTasks[name]; !ok {
			e.Tasks.Remove(name)
		}
	}
	for name, t := range newTasks {
		old, existed := e.Tasks.Get(name)
		if existed && old.Equal(t) {
			continue
		}
		e.Tasks.Put(t)
	}
}

func (e *Engine) mergeEvents(ctx context.Context, newEvents map[string]*model.Event) {
	for _, name := range e.Events.Names() {
		if _, ok := newEvents[name]; !ok {
			e.Listeners.Stop(name)
			e.Bridge.Unbind(name)
			e.Events.Remove(name)
		}
	}
	for name, ev := range newEvents {
		old, existed := e.Events.Get(name)
		if existed && old.Equal(ev) {
			continue
		}
		if existed {
			e.Listeners.Stop(name)
			e.Bridge.Unbind(name)
		}
		e.Events.Put(ev)
		e.Bridge.Bind(name, ev.Condition)
		e.Listeners.Start(ctx, ev)
	}
}

func (e *Engine) mergeConditions(newConditions map[string]*model.Condition) {
	for _, name := range e.Conditions.Names() {
		if _, ok := newConditions[name]; !ok {
			e.Conditions.Remove(name)
		}
	}
	for name, c := range newConditions {
		old, existed := e.Conditions.Get(name)
		if existed && old.Equal(c) {
			e.Conditions.Put(c, true)
			continue
		}
		e.Conditions.Put(c, false)
	}
}
