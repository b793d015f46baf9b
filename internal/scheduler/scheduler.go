// Package scheduler implements the tick dispatcher (§4.1): a periodic
// tick enumerates the eligible conditions in the registry and starts
// one goroutine per check, without blocking the tick loop itself. The
// number of concurrent check goroutines is not bounded. The event
// bridge is not drained here: each Bucket predicate consumes its own
// flag when its condition is checked.
package scheduler

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/whenever-go/whenever/internal/condition"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
	"github.com/whenever-go/whenever/internal/registry"
)

// Scheduler runs the periodic tick loop described in §4.1.
type Scheduler struct {
	Conditions *registry.ConditionRegistry
	Engine     *condition.Engine
	Log        *logging.Logger
	Randomize  bool
	TickPeriod time.Duration

	mu        sync.Mutex
	paused    bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	checkWG   sync.WaitGroup
	immediate context.CancelFunc
}

func New(conditions *registry.ConditionRegistry, engine *condition.Engine, log *logging.Logger, tickPeriod time.Duration, randomize bool) *Scheduler {
	return &Scheduler{
		Conditions: conditions,
		Engine:     engine,
		Log:        log,
		TickPeriod: tickPeriod,
		Randomize:  randomize,
	}
}

// Start launches the tick loop in a background goroutine; it returns
// immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.TickPeriod)
	defer ticker.Stop()
	wasPaused := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			paused := s.paused
			s.mu.Unlock()
			if paused {
				if !wasPaused {
					s.Log.Record(logging.WhenPause, logging.StatusYes, "tick", "scheduler", "", "scheduler paused", logging.LevelInfo)
				}
				wasPaused = true
				continue
			}
			if wasPaused {
				s.Log.Record(logging.WhenPause, logging.StatusNo, "tick", "scheduler", "", "scheduler resumed", logging.LevelInfo)
			}
			wasPaused = false
			s.dispatchTick(ctx)
		}
	}
}

func (s *Scheduler) dispatchTick(ctx context.Context) {
	for _, name := range s.Conditions.Names() {
		cond, ok := s.Conditions.Get(name)
		if !ok {
			continue
		}
		state, ok := s.Conditions.State(name)
		if !ok || state.Busy {
			continue
		}
		if state.Status == model.StatusSuspended || state.Status == model.StatusSucceeded || state.Status == model.StatusExhausted {
			continue
		}

		if cond.Variant.TimeDeterministic() || !s.Randomize {
			s.dispatchCheck(ctx, name)
			continue
		}

		delay := time.Duration(rand.Int63n(int64(s.TickPeriod)))
		s.checkWG.Add(1)
		go func(n string, d time.Duration) {
			defer s.checkWG.Done()
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Engine.Check(ctx, n)
			}
		}(name, delay)
	}
}

func (s *Scheduler) dispatchCheck(ctx context.Context, name string) {
	s.checkWG.Add(1)
	go func() {
		defer s.checkWG.Done()
		s.Engine.Check(ctx, name)
	}()
}

// Pause prevents new dispatches; in-flight work runs to completion.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// ExitGraceful stops accepting new checks and waits for in-flight
// checks and task sequences to finish before returning (§4.1 step 5).
func (s *Scheduler) ExitGraceful() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.checkWG.Wait()
}

// ExitImmediate cancels in-flight work and returns as fast as the
// environment permits, without waiting for it to unwind.
func (s *Scheduler) ExitImmediate() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ResetConditions resets the named conditions, or all of them if names
// is empty.
func (s *Scheduler) ResetConditions(names ...string) {
	if len(names) == 0 {
		names = s.Conditions.Names()
	}
	for _, n := range names {
		s.Engine.Reset(n)
	}
}

func (s *Scheduler) SuspendCondition(name string) { s.Engine.Suspend(name) }
func (s *Scheduler) ResumeCondition(name string)  { s.Engine.Resume(name) }
