package toast

import (
	"time"

	"github.com/vango-dev/hermes/pkg/surface"
)

// DefaultHold is used when a Style's Hold is zero.
const DefaultHold = 3 * time.Second

// Built-in notification type names.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeWarning = "warning"
	TypeInfo    = "info"
)

// Style describes how one notification type looks through its lifecycle.
//
// Enter must end on the same appearance that Paused and Exit start from.
type Style struct {
	// Shared classes stay on the element for its whole life.
	Shared []string

	// Enter classes are applied while the element animates in.
	Enter []string

	// Paused classes are applied while the element holds. Optional.
	Paused []string

	// Exit classes are applied while the element animates out.
	Exit []string

	// Hold is how long the element stays before exiting.
	// Zero means DefaultHold.
	Hold time.Duration
}

// HoldDuration returns the effective hold duration.
func (s Style) HoldDuration() time.Duration {
	if s.Hold == 0 {
		return DefaultHold
	}
	return s.Hold
}

func (s Style) clone() Style {
	return Style{
		Shared: append([]string(nil), s.Shared...),
		Enter:  append([]string(nil), s.Enter...),
		Paused: append([]string(nil), s.Paused...),
		Exit:   append([]string(nil), s.Exit...),
		Hold:   s.Hold,
	}
}

// DefaultStyles returns a style for each built-in type, using the class
// names of the stylesheet served by pkg/live.
func DefaultStyles() map[string]Style {
	styles := make(map[string]Style, 4)
	for _, typ := range []string{TypeSuccess, TypeError, TypeWarning, TypeInfo} {
		styles[typ] = Style{
			Shared: []string{"toast", "toast-" + typ},
			Enter:  []string{"toast-in"},
			Paused: []string{"toast-paused"},
			Exit:   []string{"toast-out"},
		}
	}
	return styles
}

// Message is the content of a notification: plain text or a prebuilt
// element.
type Message struct {
	text string
	node surface.Element
}

// Text creates a plain text message.
func Text(s string) Message {
	return Message{text: s}
}

// Node creates a message from a prebuilt element. The notification takes
// ownership of the element.
func Node(el surface.Element) Message {
	return Message{node: el}
}

// String returns the message text.
func (m Message) String() string {
	if m.node != nil {
		return m.node.Text()
	}
	return m.text
}

func (m Message) apply(el surface.Element) {
	if m.node != nil {
		el.AppendChild(m.node)
		return
	}
	el.SetText(m.text)
}
