package dom

import "github.com/vango-dev/hermes/pkg/surface"

// Event is a dispatched event. It implements surface.Event.
type Event struct {
	typ     string
	target  *Node
	current *Node
	stopped bool
}

// Type implements surface.Event.
func (e *Event) Type() string { return e.typ }

// Target implements surface.Event.
func (e *Event) Target() surface.Element {
	if e.target == nil {
		return nil
	}
	return e.target
}

// CurrentTarget returns the node whose listeners are running.
func (e *Event) CurrentTarget() *Node { return e.current }

// StopPropagation implements surface.Event. Remaining listeners on the
// current node still run; ancestors are skipped.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool { return e.stopped }

type listener struct {
	fn      surface.Listener
	removed bool
}

// Dispatch fires an event named typ at target and bubbles it through the
// ancestors. It returns the event so callers can inspect whether it was
// stopped.
func (d *Document) Dispatch(target *Node, typ string) *Event {
	ev := &Event{typ: typ, target: target}
	for n := target; n != nil; n = n.parent {
		ev.current = n
		// Snapshot: listeners added during dispatch do not run, removed ones are skipped.
		ls := append([]*listener(nil), n.listeners[typ]...)
		for _, l := range ls {
			if l.removed {
				continue
			}
			l.fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.current = nil
	return ev
}

// Fire dispatches an event named typ at n.
func (n *Node) Fire(typ string) *Event {
	return n.doc.Dispatch(n, typ)
}

// AddEventListener implements surface.Element.
func (n *Node) AddEventListener(typ string, fn surface.Listener) func() {
	l := &listener{fn: fn}
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	n.listeners[typ] = append(n.listeners[typ], l)

	return func() {
		if l.removed {
			return
		}
		l.removed = true
		ls := n.listeners[typ]
		for i, other := range ls {
			if other == l {
				n.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(n.listeners[typ]) == 0 {
			delete(n.listeners, typ)
		}
	}
}

// ListenerCount returns the number of live listeners for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}
