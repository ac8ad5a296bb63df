// Package dispatch decides where request outcomes are delivered.
//
// A [Scheduler] separates the goroutine that performed network I/O from the
// one that runs caller handlers. The default [Loop] runs every [Main] action
// on a single goroutine, in submission order, so handlers never race each
// other.
package dispatch

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is reported when work is submitted to a closed Loop.
var ErrClosed = errors.New("dispatch loop closed")

// Target is the execution context an action runs on.
type Target int

const (
	// Main is the serialized context handlers run on.
	Main Target = iota
	// Background runs each action on its own goroutine.
	Background
)

// Mode says whether Perform waits for the action.
type Mode int

const (
	Async Mode = iota
	Sync
)

// Scheduler runs actions on a target context.
type Scheduler interface {
	Perform(target Target, mode Mode, action func())
}

// SchedulerFunc adapts a function to a Scheduler, letting an application
// hand outcomes to its own event loop.
type SchedulerFunc func(target Target, mode Mode, action func())

// Perform implements Scheduler.
func (f SchedulerFunc) Perform(target Target, mode Mode, action func()) {
	f(target, mode, action)
}

// Loop is the default Scheduler.
//
// A worker goroutine runs only while Main actions are queued and exits once
// the queue drains, so an idle or discarded Loop holds no goroutine.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	running bool
	closed  bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewLoop returns a Loop. A nil logger falls back to slog.Default.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loop{logger: logger}
}

// Perform queues action on target. With Sync it blocks until the action
// returns. Calling Perform with Sync and Main from inside a Main action
// deadlocks. Actions submitted after Close are dropped; use Submit to
// learn about it.
func (l *Loop) Perform(target Target, mode Mode, action func()) {
	if err := l.Submit(target, mode, action); err != nil {
		l.logger.Warn("dispatch: dropping action", "error", err)
	}
}

// Submit is Perform reporting [ErrClosed] instead of dropping the action.
func (l *Loop) Submit(target Target, mode Mode, action func()) error {
	if action == nil {
		return nil
	}

	var done chan struct{}
	if mode == Sync {
		done = make(chan struct{})
		inner := action
		action = func() {
			defer close(done)
			inner()
		}
	}

	if !l.submit(target, action) {
		return ErrClosed
	}

	if done != nil {
		<-done
	}

	return nil
}

func (l *Loop) submit(target Target, action func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}

	l.wg.Add(1)

	if target == Background {
		go l.exec(action)
		return true
	}

	l.pending = append(l.pending, action)
	if !l.running {
		l.running = true
		go l.drain()
	}

	return true
}

// drain runs queued Main actions in order and returns when none are left.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.running = false
			l.pending = nil
			l.mu.Unlock()
			return
		}
		next := l.pending[0]
		l.pending[0] = nil
		l.pending = l.pending[1:]
		l.mu.Unlock()

		l.exec(next)
	}
}

func (l *Loop) exec(action func()) {
	defer l.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch: action panicked", "panic", r)
		}
	}()

	action()
}

// Wait blocks until every action submitted so far has run.
func (l *Loop) Wait() {
	l.wg.Wait()
}

// Close stops accepting work and waits for the actions already submitted.
// It is safe to call more than once.
func (l *Loop) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.wg.Wait()

	return nil
}
