package toast

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vango-dev/hermes/pkg/clock"
	"github.com/vango-dev/hermes/pkg/surface"
)

// IDAttr is the attribute holding a notification's ID on its element.
const IDAttr = "data-toast-id"

// State is a notification lifecycle state.
type State uint8

const (
	StateBeforeStart  State = iota // Created, not yet started
	StateAnimatingIn               // Enter classes applied, waiting for end signal
	StatePaused                    // Holding, timer armed
	StateAnimatingOut              // Exit classes applied, waiting for end signal
	StateRemoved                   // Detached; terminal
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateBeforeStart:
		return "before-start"
	case StateAnimatingIn:
		return "animating-in"
	case StatePaused:
		return "paused"
	case StateAnimatingOut:
		return "animating-out"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Notification is one message on the surface with its own lifecycle.
type Notification struct {
	id      string
	typ     string
	message string
	style   Style
	el      surface.Element

	clock    clock.Clock
	logger   *slog.Logger
	observer Observer

	state State

	// cancelRequested makes the enter step skip the hold and exit directly.
	cancelRequested bool

	// hold is non-nil only while paused.
	hold clock.Timer

	// release drops the listeners of the phase waiting for an end signal.
	release func()

	onComplete func()
	createdAt  time.Time
}

func newNotification(typ string, style Style, msg Message, surf surface.Surface, clk clock.Clock, logger *slog.Logger, observer Observer) *Notification {
	n := &Notification{
		id:        uuid.NewString(),
		typ:       typ,
		message:   msg.String(),
		style:     style,
		el:        surf.CreateElement("li"),
		clock:     clk,
		observer:  observer,
		createdAt: clk.Now(),
	}
	n.logger = logger.With("toast_id", n.id, "type", typ)

	n.el.AddClass(style.Shared...)
	n.el.SetAttr(IDAttr, n.id)
	msg.apply(n.el)
	return n
}

// ID returns the notification's unique identifier.
func (n *Notification) ID() string { return n.id }

// Type returns the name of the style the notification was created from.
func (n *Notification) Type() string { return n.typ }

// Message returns the notification's text content at creation time.
func (n *Notification) Message() string { return n.message }

// Element returns the element owned by the notification.
func (n *Notification) Element() surface.Element { return n.el }

// State returns the current lifecycle state.
func (n *Notification) State() State { return n.state }

// CancelRequested reports whether a cancel is waiting for the enter
// effect to finish.
func (n *Notification) CancelRequested() bool { return n.cancelRequested }

// start begins the enter effect. onComplete runs once the element has been
// detached after its exit effect.
func (n *Notification) start(onComplete func()) {
	if n.state != StateBeforeStart {
		return
	}
	n.onComplete = onComplete
	n.animateIn()
}

// Cancel ends the notification early.
//
// While entering, the enter effect is allowed to finish and the
// notification then exits without holding. While holding, the hold timer is
// stopped and the exit starts immediately. Once exiting, Cancel does
// nothing.
func (n *Notification) Cancel() {
	switch n.state {
	case StateBeforeStart, StateAnimatingIn:
		if !n.cancelRequested {
			n.logger.Debug("cancel deferred until enter completes")
		}
		n.cancelRequested = true

	case StatePaused:
		if n.hold != nil {
			n.hold.Stop()
			n.hold = nil
		}
		n.el.RemoveClass(n.style.Paused...)
		n.animateOut()
	}
}

func (n *Notification) animateIn() {
	n.setState(StateAnimatingIn)
	n.el.AddClass(n.style.Enter...)

	n.awaitEnd(func() {
		n.el.RemoveClass(n.style.Enter...)
		if n.cancelRequested {
			n.animateOut()
			return
		}
		n.pause()
	})
}

func (n *Notification) pause() {
	n.setState(StatePaused)
	n.el.AddClass(n.style.Paused...)

	n.hold = n.clock.AfterFunc(n.style.HoldDuration(), func() {
		// A cancel that raced the timer already moved us on.
		if n.state != StatePaused {
			return
		}
		n.hold = nil
		n.el.RemoveClass(n.style.Paused...)
		n.animateOut()
	})
}

func (n *Notification) animateOut() {
	n.setState(StateAnimatingOut)
	n.el.AddClass(n.style.Exit...)

	n.awaitEnd(func() {
		if parent := n.el.Parent(); parent != nil {
			parent.RemoveChild(n.el)
		}
		n.setState(StateRemoved)
		n.observer.Removed(n, n.clock.Now().Sub(n.createdAt))

		if done := n.onComplete; done != nil {
			n.onComplete = nil
			done()
		}
	})
}

// awaitEnd runs next on the first end signal delivered to the element.
// The signal does not propagate further, and later signals for the same
// phase are ignored.
func (n *Notification) awaitEnd(next func()) {
	removers := make([]func(), 0, len(surface.EndEvents))
	fired := false

	listener := func(ev surface.Event) {
		ev.StopPropagation()
		if fired {
			return
		}
		fired = true
		n.release()
		next()
	}

	for _, name := range surface.EndEvents {
		removers = append(removers, n.el.AddEventListener(name, listener))
	}
	n.release = func() {
		for _, remove := range removers {
			remove()
		}
		n.release = nil
	}
}

// abandon moves the notification straight to the removed state without
// its exit effect. The element is left where it is.
func (n *Notification) abandon() {
	if n.state == StateRemoved {
		return
	}
	if n.hold != nil {
		n.hold.Stop()
		n.hold = nil
	}
	if n.release != nil {
		n.release()
	}
	n.onComplete = nil
	n.setState(StateRemoved)
}

func (n *Notification) setState(to State) {
	from := n.state
	n.state = to
	n.logger.Debug("toast state changed", "from", from.String(), "to", to.String())
	n.observer.StateChanged(n, from, to)
}
