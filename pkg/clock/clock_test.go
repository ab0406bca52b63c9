package clock

import (
	"testing"
	"time"
)

func TestManualAdvance(t *testing.T) {
	m := NewManual(time.Time{})
	start := m.Now()

	var fired []string
	m.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "b") })
	m.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a") })
	m.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a2") })

	m.Advance(5 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("nothing should fire yet, got %v", fired)
	}

	m.Advance(15 * time.Millisecond)
	if len(fired) != 3 || fired[0] != "a" || fired[1] != "a2" || fired[2] != "b" {
		t.Errorf("fired = %v, want [a a2 b]", fired)
	}
	if got := m.Now().Sub(start); got != 20*time.Millisecond {
		t.Errorf("elapsed = %v, want 20ms", got)
	}
	if m.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", m.Pending())
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Time{})
	ran := false
	timer := m.AfterFunc(time.Second, func() { ran = true })

	if !timer.Stop() {
		t.Error("first Stop() should return true")
	}
	if timer.Stop() {
		t.Error("second Stop() should return false")
	}
	m.Advance(2 * time.Second)
	if ran {
		t.Error("stopped timer ran")
	}
}

func TestManualNestedScheduling(t *testing.T) {
	m := NewManual(time.Time{})
	var at []time.Duration
	start := m.Now()

	m.AfterFunc(10*time.Millisecond, func() {
		at = append(at, m.Now().Sub(start))
		m.AfterFunc(10*time.Millisecond, func() {
			at = append(at, m.Now().Sub(start))
		})
	})

	m.Advance(25 * time.Millisecond)
	if len(at) != 2 || at[0] != 10*time.Millisecond || at[1] != 20*time.Millisecond {
		t.Errorf("callbacks ran at %v, want [10ms 20ms]", at)
	}
}

func TestDispatchingQueuesCallbacks(t *testing.T) {
	m := NewManual(time.Time{})
	var queue []func()
	c := Dispatching(m, func(f func()) { queue = append(queue, f) })

	ran := 0
	c.AfterFunc(time.Millisecond, func() { ran++ })
	m.Advance(time.Millisecond)

	if ran != 0 {
		t.Fatal("callback should wait for the loop")
	}
	if len(queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(queue))
	}
	queue[0]()
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
}

func TestDispatchingStopAfterExpiry(t *testing.T) {
	m := NewManual(time.Time{})
	var queue []func()
	c := Dispatching(m, func(f func()) { queue = append(queue, f) })

	ran := false
	timer := c.AfterFunc(time.Millisecond, func() { ran = true })
	m.Advance(time.Millisecond)

	// Expired and queued, but stopped before the loop got to it.
	if !timer.Stop() {
		t.Error("Stop() should report success before the callback ran")
	}
	for _, f := range queue {
		f()
	}
	if ran {
		t.Error("callback ran after Stop()")
	}
}

func TestSystemClock(t *testing.T) {
	c := System()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("system timer did not fire")
	}
}
