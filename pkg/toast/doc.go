// Package toast manages transient notifications ("toasts") on a render
// surface.
//
// A Notifier owns a list element and a queue of live notifications. Each
// configured type ("success", "error", ...) maps to a Style that names the
// classes to apply while a notification enters, holds and exits:
//
//	n, err := toast.New(toast.Config{
//	    Surface: doc,
//	    Target:  doc.Body(),
//	    Styles: map[string]toast.Style{
//	        toast.TypeSuccess: {
//	            Shared: []string{"toast", "toast-success"},
//	            Enter:  []string{"toast-in"},
//	            Paused: []string{"toast-paused"},
//	            Exit:   []string{"toast-out"},
//	            Hold:   2 * time.Second,
//	        },
//	    },
//	    MaxNotifications: 3,
//	})
//
//	n.Notify(toast.TypeSuccess, toast.Text("Project deleted"))
//
// # Lifecycle
//
// A notification moves through before-start, animating-in, paused,
// animating-out and removed. Entering and exiting wait for the element's
// transition-finished signal (any of surface.EndEvents); holding waits for
// the style's Hold duration on the configured clock.
//
// The enter classes must end on the same look the paused and exit classes
// start from. Cancelling a notification never cuts an effect short: a
// notification cancelled while entering finishes entering and then exits
// without holding.
//
// # Capacity
//
// When MaxNotifications is set and a new notification pushes the queue over
// it, the oldest notification leaves the queue at once and is cancelled. It
// stays on screen until its exit effect finishes.
//
// # Threading
//
// A Notifier and its notifications are not safe for concurrent use. Drive
// them from one event loop and deliver timer callbacks onto that loop (see
// clock.Dispatching).
package toast
