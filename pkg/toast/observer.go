package toast

import "time"

// Observer receives lifecycle notifications from a Notifier. Methods are
// called on the notifier's goroutine and must not block.
type Observer interface {
	// Shown is called when a notification is created, before it starts.
	Shown(n *Notification)

	// StateChanged is called on every lifecycle transition.
	StateChanged(n *Notification, from, to State)

	// Evicted is called when a notification is pushed out of the queue by
	// a newer one.
	Evicted(n *Notification)

	// Removed is called once the element has left the surface.
	Removed(n *Notification, lifetime time.Duration)

	// Abandoned is called by Notifier.Close for a notification that never
	// reached the removed state. Removed is not called for it.
	Abandoned(n *Notification)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) Shown(*Notification)                      {}
func (NopObserver) StateChanged(*Notification, State, State) {}
func (NopObserver) Evicted(*Notification)                    {}
func (NopObserver) Removed(*Notification, time.Duration)     {}
func (NopObserver) Abandoned(*Notification)                  {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) Shown(n *Notification) {
	for _, obs := range o {
		obs.Shown(n)
	}
}

func (o Observers) StateChanged(n *Notification, from, to State) {
	for _, obs := range o {
		obs.StateChanged(n, from, to)
	}
}

func (o Observers) Evicted(n *Notification) {
	for _, obs := range o {
		obs.Evicted(n)
	}
}

func (o Observers) Removed(n *Notification, lifetime time.Duration) {
	for _, obs := range o {
		obs.Removed(n, lifetime)
	}
}

func (o Observers) Abandoned(n *Notification) {
	for _, obs := range o {
		obs.Abandoned(n)
	}
}
