package toast_test

import (
	"sort"
	"testing"
	"time"

	"github.com/vango-dev/hermes/pkg/clock"
	"github.com/vango-dev/hermes/pkg/dom"
	"github.com/vango-dev/hermes/pkg/surface"
	"github.com/vango-dev/hermes/pkg/toast"
)

// successStyle is the style used by the lifecycle scenarios.
var successStyle = toast.Style{
	Shared: []string{"s-success"},
	Enter:  []string{"s-in"},
	Paused: []string{"s-paused"},
	Exit:   []string{"s-out"},
	Hold:   10 * time.Millisecond,
}

type fixture struct {
	doc      *dom.Document
	clk      *clock.Manual
	notifier *toast.Notifier
}

func newFixture(t *testing.T, max int) *fixture {
	t.Helper()
	return newFixtureWithStyles(t, max, map[string]toast.Style{toast.TypeSuccess: successStyle})
}

func newFixtureWithStyles(t *testing.T, max int, styles map[string]toast.Style) *fixture {
	t.Helper()
	doc := dom.NewDocument()
	clk := clock.NewManual(time.Time{})
	n, err := toast.New(toast.Config{
		Surface:          doc,
		Target:           doc.Body(),
		Styles:           styles,
		ListClasses:      []string{"test-class"},
		MaxNotifications: max,
		Clock:            clk,
	})
	if err != nil {
		t.Fatalf("toast.New() error: %v", err)
	}
	return &fixture{doc: doc, clk: clk, notifier: n}
}

func (f *fixture) notify(t *testing.T, msg string) *toast.Notification {
	t.Helper()
	n, err := f.notifier.Notify(toast.TypeSuccess, toast.Text(msg))
	if err != nil {
		t.Fatalf("Notify(%q) error: %v", msg, err)
	}
	return n
}

func (f *fixture) list() *dom.Node {
	return f.notifier.List().(*dom.Node)
}

// fireEnd delivers a transition-finished signal to the notification's element.
func fireEnd(n *toast.Notification) *dom.Event {
	return n.Element().(*dom.Node).Fire(surface.EventTransitionEnd)
}

func classSet(el surface.Element) []string {
	cs := el.Classes()
	sort.Strings(cs)
	return cs
}

func assertClasses(t *testing.T, n *toast.Notification, want ...string) {
	t.Helper()
	sort.Strings(want)
	got := classSet(n.Element())
	if len(got) != len(want) {
		t.Fatalf("classes = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("classes = %v, want %v", got, want)
		}
	}
}

func assertState(t *testing.T, n *toast.Notification, want toast.State) {
	t.Helper()
	if got := n.State(); got != want {
		t.Fatalf("State() = %s, want %s", got, want)
	}
}

func newManualClock() *clock.Manual {
	return clock.NewManual(time.Time{})
}
