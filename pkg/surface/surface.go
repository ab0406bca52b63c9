// Package surface defines the render surface a notifier draws on.
//
// A surface is anything that can create elements, arrange them in a tree,
// toggle named style-tags (CSS classes) on them and deliver the
// transition-finished signal when an element's visual effect ends.
// The in-memory implementation lives in pkg/dom.
package surface

// Transition and animation end event variants. Browsers differ in which of
// these they emit, so listeners subscribe to all of them.
const (
	EventAnimationEnd        = "animationend"
	EventWebkitAnimationEnd  = "webkitAnimationEnd"
	EventOAnimationEnd       = "oAnimationEnd"
	EventMSAnimationEnd      = "MSAnimationEnd"
	EventTransitionEnd       = "transitionend"
	EventWebkitTransitionEnd = "webkitTransitionEnd"
	EventOTransitionEnd      = "oTransitionEnd"
	EventMSTransitionEnd     = "MSTransitionEnd"
)

// EndEvents lists every event that signals the end of an enter or exit effect.
var EndEvents = []string{
	EventAnimationEnd,
	EventWebkitAnimationEnd,
	EventOAnimationEnd,
	EventMSAnimationEnd,
	EventTransitionEnd,
	EventWebkitTransitionEnd,
	EventOTransitionEnd,
	EventMSTransitionEnd,
}

// IsEndEvent reports whether name is one of EndEvents.
func IsEndEvent(name string) bool {
	for _, e := range EndEvents {
		if e == name {
			return true
		}
	}
	return false
}

// Event is a signal delivered to an element's listeners.
type Event interface {
	// Type is the event name (e.g. "transitionend").
	Type() string

	// Target is the element the event was fired on.
	Target() Element

	// StopPropagation prevents the event from reaching ancestors.
	StopPropagation()
}

// Listener handles an event.
type Listener func(Event)

// Element is a node on the render surface.
type Element interface {
	// Tag returns the element tag name ("ul", "li", ...).
	Tag() string

	// ID returns the surface-assigned identifier of the element.
	ID() string

	AddClass(classes ...string)
	RemoveClass(classes ...string)
	HasClass(class string) bool
	Classes() []string

	// SetAttr sets a plain attribute such as data-*.
	SetAttr(key, value string)

	// SetText replaces the element's children with a text node.
	SetText(text string)

	// Text returns the concatenated text content of the subtree.
	Text() string

	AppendChild(child Element)

	// InsertBefore inserts child before ref. A nil ref appends.
	InsertBefore(child, ref Element)

	// FirstChild returns the first element child, or nil.
	FirstChild() Element

	RemoveChild(child Element)

	// Parent returns the parent element, or nil when detached.
	Parent() Element

	// AddEventListener subscribes l to events named typ fired on this
	// element or bubbling up from a descendant. The returned function
	// removes the subscription.
	AddEventListener(typ string, l Listener) (remove func())
}

// Surface creates elements.
type Surface interface {
	CreateElement(tag string) Element
}
