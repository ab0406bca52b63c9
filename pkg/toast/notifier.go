package toast

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/clock"
	"github.com/vango-dev/hermes/pkg/surface"
)

// Config configures a Notifier.
type Config struct {
	// Surface creates the list and notification elements. Required.
	Surface surface.Surface

	// Target hosts the notification list. Required.
	Target surface.Element

	// Styles maps notification type names to styles. Required, may be empty.
	Styles map[string]Style

	// ListClasses are applied to the list element once, at creation.
	ListClasses []string

	// MaxNotifications caps the queue. Zero means unbounded.
	MaxNotifications int

	// Clock drives hold timers. Defaults to clock.System().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Observer receives lifecycle events. Defaults to NopObserver.
	Observer Observer
}

// NotifyFunc shows a notification of a fixed type.
type NotifyFunc func(msg Message)

// Notifier owns the notification list and the queue of live notifications.
type Notifier struct {
	surface  surface.Surface
	list     surface.Element
	styles   map[string]Style
	funcs    map[string]NotifyFunc
	max      int
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer

	// queue holds live notifications, oldest first.
	queue []*Notification

	// active holds every notification not yet removed, including evicted
	// ones that are still exiting.
	active []*Notification
}

// New creates a Notifier and attaches its list element to cfg.Target.
func New(cfg Config) (*Notifier, error) {
	if cfg.Surface == nil || cfg.Target == nil {
		return nil, errors.New("H001").
			WithSuggestion("Set both Config.Surface and Config.Target")
	}
	if cfg.Styles == nil {
		return nil, errors.New("H002").
			WithSuggestion("Pass toast.DefaultStyles() or an empty map")
	}
	if cfg.MaxNotifications < 0 {
		return nil, errors.New("H003").
			WithDetailf("got %d", cfg.MaxNotifications)
	}
	for name, style := range cfg.Styles {
		if style.Hold < 0 {
			return nil, errors.New("H005").
				WithDetailf("style %q has hold %s", name, style.Hold)
		}
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}

	n := &Notifier{
		surface:  cfg.Surface,
		styles:   make(map[string]Style, len(cfg.Styles)),
		funcs:    make(map[string]NotifyFunc, len(cfg.Styles)),
		max:      cfg.MaxNotifications,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With("component", "toast"),
		observer: cfg.Observer,
	}

	for name, style := range cfg.Styles {
		typ, st := name, style.clone()
		n.styles[typ] = st
		n.funcs[typ] = func(msg Message) {
			n.add(typ, st, msg)
		}
	}

	n.list = cfg.Surface.CreateElement("ul")
	n.list.AddClass(cfg.ListClasses...)
	cfg.Target.AppendChild(n.list)

	return n, nil
}

// Notify shows a notification of the given type.
func (n *Notifier) Notify(typ string, msg Message) (*Notification, error) {
	style, ok := n.styles[typ]
	if !ok {
		return nil, errors.New("H004").
			WithDetailf("no style named %q", typ).
			WithSuggestion("Configured types: " + strings.Join(n.Types(), ", "))
	}
	return n.add(typ, style, msg), nil
}

// Func returns the bound notify function for a type.
func (n *Notifier) Func(typ string) (NotifyFunc, bool) {
	f, ok := n.funcs[typ]
	return f, ok
}

// Funcs returns a notify function for every configured type.
func (n *Notifier) Funcs() map[string]NotifyFunc {
	out := make(map[string]NotifyFunc, len(n.funcs))
	for k, v := range n.funcs {
		out[k] = v
	}
	return out
}

// Types returns the configured type names, sorted.
func (n *Notifier) Types() []string {
	types := make([]string, 0, len(n.styles))
	for typ := range n.styles {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Style returns the style registered for typ.
func (n *Notifier) Style(typ string) (Style, bool) {
	s, ok := n.styles[typ]
	if !ok {
		return Style{}, false
	}
	return s.clone(), true
}

// Len returns the number of notifications in the queue.
func (n *Notifier) Len() int {
	return len(n.queue)
}

// Queue returns the live notifications, oldest first. Evicted notifications
// that are still exiting are not included.
func (n *Notifier) Queue() []*Notification {
	return append([]*Notification(nil), n.queue...)
}

// List returns the element hosting the notifications.
func (n *Notifier) List() surface.Element {
	return n.list
}

// MaxNotifications returns the queue cap; zero means unbounded.
func (n *Notifier) MaxNotifications() int {
	return n.max
}

func (n *Notifier) add(typ string, style Style, msg Message) *Notification {
	note := newNotification(typ, style, msg, n.surface, n.clock, n.logger, n.observer)
	n.observer.Shown(note)

	n.queue = append(n.queue, note)
	n.active = append(n.active, note)

	if n.max > 0 && len(n.queue) > n.max {
		oldest := n.queue[0]
		n.queue[0] = nil
		n.queue = n.queue[1:]
		n.logger.Debug("toast evicted", "toast_id", oldest.id, "state", oldest.state.String())
		n.observer.Evicted(oldest)
		oldest.Cancel()
	}

	note.start(func() {
		n.dequeue(note)
		n.active = without(n.active, note)
	})

	n.list.InsertBefore(note.el, n.list.FirstChild())

	n.logger.Debug("toast shown", "toast_id", note.id, "type", typ, "queued", len(n.queue))
	return note
}

// dequeue removes note from the queue if it is still there. Evicted
// notifications have already left.
func (n *Notifier) dequeue(note *Notification) {
	n.queue = without(n.queue, note)
}

func without(list []*Notification, note *Notification) []*Notification {
	for i, q := range list {
		if q == note {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}

// Active returns the number of notifications that have not been removed
// yet, counting evicted ones still exiting.
func (n *Notifier) Active() int {
	return len(n.active)
}

// Close abandons every notification that has not been removed: hold timers
// are stopped, listeners dropped and Observer.Abandoned is called for each.
// The elements stay on the surface. The notifier can still be used after
// Close.
func (n *Notifier) Close() {
	active := n.active
	n.active = nil
	n.queue = nil
	for _, note := range active {
		note.abandon()
		n.observer.Abandoned(note)
	}
	if len(active) > 0 {
		n.logger.Debug("toasts abandoned", "count", len(active))
	}
}
