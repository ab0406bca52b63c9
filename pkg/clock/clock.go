// Package clock provides the timer service used by notifications.
//
// Three clocks are available:
//   - System: the wall clock, callbacks run on their own goroutine
//   - Dispatching: wraps another clock and hands expired callbacks to an
//     event loop so they run serialised with everything else
//   - Manual: a fake clock advanced explicitly, for tests and simulations
package clock

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or the timer was already stopped.
	Stop() bool
}

// Clock schedules one-shot callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System returns the wall clock.
func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Dispatching returns a clock whose callbacks are passed to dispatch
// instead of being run directly. dispatch is typically a function that
// enqueues work on an event loop. Stop must be called from that same loop;
// a timer stopped after it expired but before its dispatched callback ran
// still never runs the callback.
func Dispatching(base Clock, dispatch func(func())) Clock {
	return &dispatchingClock{base: base, dispatch: dispatch}
}

type dispatchingClock struct {
	base     Clock
	dispatch func(func())
}

func (c *dispatchingClock) Now() time.Time { return c.base.Now() }

func (c *dispatchingClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &dispatchTimer{}
	t.inner = c.base.AfterFunc(d, func() {
		c.dispatch(func() {
			if t.stopped {
				return
			}
			t.fired = true
			f()
		})
	})
	return t
}

type dispatchTimer struct {
	inner   Timer
	stopped bool
	fired   bool
}

func (t *dispatchTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.inner.Stop()
	return true
}
