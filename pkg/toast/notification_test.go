package toast_test

import (
	"testing"
	"time"

	"github.com/vango-dev/hermes/pkg/dom"
	"github.com/vango-dev/hermes/pkg/surface"
	"github.com/vango-dev/hermes/pkg/toast"
)

func TestNaturalLifecycle(t *testing.T) {
	f := newFixture(t, 0)
	n := f.notify(t, "hi")

	if got := len(f.list().ElementChildren()); got != 1 {
		t.Fatalf("list has %d children, want 1", got)
	}
	if got := n.Element().Text(); got != "hi" {
		t.Errorf("Text() = %q, want %q", got, "hi")
	}
	assertState(t, n, toast.StateAnimatingIn)
	assertClasses(t, n, "s-success", "s-in")

	fireEnd(n)
	assertState(t, n, toast.StatePaused)
	assertClasses(t, n, "s-success", "s-paused")

	f.clk.Advance(9 * time.Millisecond)
	assertState(t, n, toast.StatePaused)

	f.clk.Advance(time.Millisecond)
	assertState(t, n, toast.StateAnimatingOut)
	assertClasses(t, n, "s-success", "s-out")

	fireEnd(n)
	assertState(t, n, toast.StateRemoved)
	if n.Element().Parent() != nil {
		t.Error("element should be detached after exit")
	}
	if got := len(f.list().ElementChildren()); got != 0 {
		t.Errorf("list has %d children after exit, want 0", got)
	}
	if f.notifier.Len() != 0 {
		t.Errorf("Len() = %d after natural completion, want 0", f.notifier.Len())
	}
}

func TestCancelWhileEntering(t *testing.T) {
	f := newFixture(t, 0)
	n := f.notify(t, "a")

	n.Cancel()
	assertState(t, n, toast.StateAnimatingIn)
	assertClasses(t, n, "s-success", "s-in")
	if !n.CancelRequested() {
		t.Error("CancelRequested() should be true")
	}

	fireEnd(n)
	assertState(t, n, toast.StateAnimatingOut)
	assertClasses(t, n, "s-success", "s-out")
	if f.clk.Pending() != 0 {
		t.Errorf("no hold timer should be armed, got %d pending", f.clk.Pending())
	}
}

func TestCancelWhilePaused(t *testing.T) {
	f := newFixture(t, 0)
	n := f.notify(t, "a")
	fireEnd(n)

	n.Cancel()
	assertState(t, n, toast.StateAnimatingOut)
	assertClasses(t, n, "s-success", "s-out")
	if f.clk.Pending() != 0 {
		t.Errorf("hold timer should be stopped, got %d pending", f.clk.Pending())
	}

	// The stopped timer must not drag the notification anywhere.
	f.clk.Advance(time.Second)
	assertState(t, n, toast.StateAnimatingOut)
	assertClasses(t, n, "s-success", "s-out")
}

func TestCancelIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		setup func(n *toast.Notification)
	}{
		{"entering", func(n *toast.Notification) {}},
		{"paused", func(n *toast.Notification) { fireEnd(n) }},
		{"exiting", func(n *toast.Notification) { fireEnd(n); n.Cancel() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := newFixture(t, 0)
			a := once.notify(t, "a")
			tt.setup(a)
			a.Cancel()

			twice := newFixture(t, 0)
			b := twice.notify(t, "b")
			tt.setup(b)
			b.Cancel()
			b.Cancel()

			if a.State() != b.State() {
				t.Errorf("State: once=%s twice=%s", a.State(), b.State())
			}
			ca, cb := classSet(a.Element()), classSet(b.Element())
			if len(ca) != len(cb) {
				t.Fatalf("classes: once=%v twice=%v", ca, cb)
			}
			for i := range ca {
				if ca[i] != cb[i] {
					t.Fatalf("classes: once=%v twice=%v", ca, cb)
				}
			}
			if once.clk.Pending() != twice.clk.Pending() {
				t.Errorf("pending timers: once=%d twice=%d", once.clk.Pending(), twice.clk.Pending())
			}
		})
	}
}

func TestCancelAfterRemovalIsNoop(t *testing.T) {
	f := newFixture(t, 0)
	n := f.notify(t, "a")
	fireEnd(n)
	n.Cancel()
	fireEnd(n)
	assertState(t, n, toast.StateRemoved)

	n.Cancel()
	assertState(t, n, toast.StateRemoved)
	assertClasses(t, n, "s-success", "s-out")
}

func TestPausedWithoutPausedTagsStillHolds(t *testing.T) {
	style := toast.Style{
		Shared: []string{"shared"},
		Enter:  []string{"in"},
		Exit:   []string{"out"},
		Hold:   50 * time.Millisecond,
	}
	f := newFixtureWithStyles(t, 0, map[string]toast.Style{toast.TypeSuccess: style})
	n := f.notify(t, "x")

	fireEnd(n)
	assertState(t, n, toast.StatePaused)
	assertClasses(t, n, "shared")

	f.clk.Advance(49 * time.Millisecond)
	assertState(t, n, toast.StatePaused)
	assertClasses(t, n, "shared")

	f.clk.Advance(time.Millisecond)
	assertState(t, n, toast.StateAnimatingOut)
	assertClasses(t, n, "shared", "out")
}

func TestDefaultHold(t *testing.T) {
	style := successStyle
	style.Hold = 0
	f := newFixtureWithStyles(t, 0, map[string]toast.Style{toast.TypeSuccess: style})
	n := f.notify(t, "x")
	fireEnd(n)

	f.clk.Advance(toast.DefaultHold - time.Millisecond)
	assertState(t, n, toast.StatePaused)

	f.clk.Advance(time.Millisecond)
	assertState(t, n, toast.StateAnimatingOut)
}

func TestTagsPerPhase(t *testing.T) {
	f := newFixture(t, 0)
	n := f.notify(t, "x")

	phases := []struct {
		state   toast.State
		present []string
		absent  []string
		advance func()
	}{
		{toast.StateAnimatingIn, []string{"s-success", "s-in"}, []string{"s-paused", "s-out"}, func() { fireEnd(n) }},
		{toast.StatePaused, []string{"s-success", "s-paused"}, []string{"s-in", "s-out"}, func() { f.clk.Advance(successStyle.Hold) }},
		{toast.StateAnimatingOut, []string{"s-success", "s-out"}, []string{"s-in", "s-paused"}, nil},
	}

	for _, p := range phases {
		assertState(t, n, p.state)
		for _, c := range p.present {
			if !n.Element().HasClass(c) {
				t.Errorf("%s: missing class %q", p.state, c)
			}
		}
		for _, c := range p.absent {
			if n.Element().HasClass(c) {
				t.Errorf("%s: unexpected class %q", p.state, c)
			}
		}
		if p.advance != nil {
			p.advance()
		}
	}
}

func TestEndSignalDoesNotBubble(t *testing.T) {
	f := newFixture(t, 0)
	seen := 0
	f.list().AddEventListener(surface.EventTransitionEnd, func(surface.Event) { seen++ })

	n := f.notify(t, "x")
	ev := fireEnd(n)

	if !ev.Stopped() {
		t.Error("end signal should stop propagation")
	}
	if seen != 0 {
		t.Errorf("list saw %d end signals, want 0", seen)
	}
}

func TestAllEndEventVariantsAdvance(t *testing.T) {
	for _, name := range surface.EndEvents {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 0)
			n := f.notify(t, "x")
			n.Element().(*dom.Node).Fire(name)
			assertState(t, n, toast.StatePaused)
		})
	}
}

func TestDuplicateEndSignalsIgnored(t *testing.T) {
	f := newFixture(t, 0)
	n := f.notify(t, "x")
	node := f.list().ElementChildren()[0]

	node.Fire(surface.EventAnimationEnd)
	assertState(t, n, toast.StatePaused)

	// Listeners were removed on the first firing.
	for _, name := range surface.EndEvents {
		if c := node.ListenerCount(name); c != 0 {
			t.Errorf("%s still has %d listeners", name, c)
		}
	}

	node.Fire(surface.EventTransitionEnd)
	assertState(t, n, toast.StatePaused)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state toast.State
		want  string
	}{
		{toast.StateBeforeStart, "before-start"},
		{toast.StateAnimatingIn, "animating-in"},
		{toast.StatePaused, "paused"},
		{toast.StateAnimatingOut, "animating-out"},
		{toast.StateRemoved, "removed"},
		{toast.State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
