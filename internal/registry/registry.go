// Package registry holds the three name-keyed item stores (tasks,
// conditions, events) shared by the scheduler, executor, and
// reconfiguration engine: a mutex-guarded map per item kind, no
// external registry library.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/whenever-go/whenever/internal/model"
)

// TaskRegistry holds Task definitions keyed by name.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{tasks: make(map[string]*model.Task)}
}

func (r *TaskRegistry) Add(t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("task %q already registered", t.Name)
	}
	r.tasks[t.Name] = t
	return nil
}

func (r *TaskRegistry) Get(name string) (*model.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

func (r *TaskRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, name)
}

func (r *TaskRegistry) Put(t *model.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.Name] = t
}

func (r *TaskRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for n := range r.tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *TaskRegistry) All() []*model.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out
}

// ConditionRegistry holds Condition definitions and their mutable
// runtime state, keyed by name.
type ConditionRegistry struct {
	mu         sync.RWMutex
	conditions map[string]*model.Condition
	states     map[string]*model.ConditionState
}

func NewConditionRegistry() *ConditionRegistry {
	return &ConditionRegistry{
		conditions: make(map[string]*model.Condition),
		states:     make(map[string]*model.ConditionState),
	}
}

func (r *ConditionRegistry) Add(c *model.Condition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.conditions[c.Name]; exists {
		return fmt.Errorf("condition %q already registered", c.Name)
	}
	r.conditions[c.Name] = c
	st := &model.ConditionState{Status: model.StatusIdle, RemainingRetries: c.MaxTasksRetries}
	if c.Suspended {
		st.Status = model.StatusSuspended
	}
	r.states[c.Name] = st
	return nil
}

func (r *ConditionRegistry) Get(name string) (*model.Condition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conditions[name]
	return c, ok
}

func (r *ConditionRegistry) State(name string) (*model.ConditionState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[name]
	return s, ok
}

// Put installs or replaces a condition definition in place. With
// preserveState, an existing runtime state is kept (reconfiguration of
// unchanged items, per §4.8); otherwise, or when there is none, a fresh
// state is installed (new or changed items).
func (r *ConditionRegistry) Put(c *model.Condition, preserveState bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions[c.Name] = c
	if !preserveState || r.states[c.Name] == nil {
		st := &model.ConditionState{Status: model.StatusIdle, RemainingRetries: c.MaxTasksRetries}
		if c.Suspended {
			st.Status = model.StatusSuspended
		}
		r.states[c.Name] = st
	}
}

func (r *ConditionRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conditions, name)
	delete(r.states, name)
}

func (r *ConditionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.conditions))
	for n := range r.conditions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *ConditionRegistry) All() []*model.Condition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Condition, 0, len(r.conditions))
	for _, c := range r.conditions {
		out = append(out, c)
	}
	return out
}

// EventRegistry holds Event definitions keyed by name.
type EventRegistry struct {
	mu     sync.RWMutex
	events map[string]*model.Event
}

func NewEventRegistry() *EventRegistry {
	return &EventRegistry{events: make(map[string]*model.Event)}
}

func (r *EventRegistry) Add(e *model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.events[e.Name]; exists {
		return fmt.Errorf("event %q already registered", e.Name)
	}
	r.events[e.Name] = e
	return nil
}

func (r *EventRegistry) Get(name string) (*model.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[name]
	return e, ok
}

func (r *EventRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, name)
}

func (r *EventRegistry) Put(e *model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.Name] = e
}

func (r *EventRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.events))
	for n := range r.events {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *EventRegistry) All() []*model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	return out
}

func (r *EventRegistry) ForCondition(conditionName string) []*model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Event
	for _, e := range r.events {
		if e.Condition == conditionName {
			out = append(out, e)
		}
	}
	return out
}
