package scenario

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/surface"
	"github.com/vango-dev/hermes/pkg/toast"
)

// Scenario is a scripted sequence of notifier operations.
type Scenario struct {
	Name             string               `yaml:"name"`
	Description      string               `yaml:"description,omitempty"`
	MaxNotifications int                  `yaml:"max_notifications,omitempty"`
	ListClasses      []string             `yaml:"list_classes,omitempty"`
	Styles           map[string]StyleSpec `yaml:"styles,omitempty"`
	Steps            []Step               `yaml:"steps"`
}

// StyleSpec is the YAML form of a toast.Style.
type StyleSpec struct {
	Shared []string `yaml:"shared,omitempty"`
	In     []string `yaml:"in,omitempty"`
	Paused []string `yaml:"paused,omitempty"`
	Out    []string `yaml:"out,omitempty"`
	Hold   Duration `yaml:"hold,omitempty"`
}

// Step is one scenario action. Exactly one field must be set.
type Step struct {
	Notify  *NotifyStep  `yaml:"notify,omitempty"`
	End     string       `yaml:"end,omitempty"`
	Event   string       `yaml:"event,omitempty"` // with end
	Advance *Duration    `yaml:"advance,omitempty"`
	Cancel  string       `yaml:"cancel,omitempty"`
	Expect  *Expectation `yaml:"expect,omitempty"`
}

// NotifyStep creates a notification.
type NotifyStep struct {
	Type    string `yaml:"type"`
	Message string `yaml:"message"`
	As      string `yaml:"as,omitempty"` // reference name for later steps
}

// Expectation checks the notifier after the preceding steps.
type Expectation struct {
	Ref     string   `yaml:"ref,omitempty"`
	State   string   `yaml:"state,omitempty"`
	Classes []string `yaml:"classes,omitempty"`
	Queue   *int     `yaml:"queue,omitempty"`
}

// Duration is a wrapper for time.Duration that supports YAML unmarshaling.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("H040").
			WithDetail("Failed to read " + path).
			Wrap(err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.New("H040").Wrap(err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step is well-formed and that references are
// defined before use.
func (s *Scenario) Validate() error {
	if s.MaxNotifications < 0 {
		return errors.New("H003").
			WithDetailf("max_notifications is %d", s.MaxNotifications)
	}
	for typ, st := range s.Styles {
		if st.Hold < 0 {
			return errors.New("H005").
				WithDetailf("style %q has hold %s", typ, st.Hold.Duration())
		}
	}

	defined := make(map[string]bool)
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return errors.New("H041").
				WithDetailf("step %d sets %d actions", i+1, n)
		}
		if step.Event != "" && step.End == "" {
			return errors.New("H041").
				WithDetailf("step %d: event is only valid with end", i+1)
		}

		switch {
		case step.Notify != nil:
			if step.Notify.Type == "" {
				return errors.New("H041").
					WithDetailf("step %d: notify needs a type", i+1)
			}
			if step.Notify.As != "" {
				defined[step.Notify.As] = true
			}
		case step.End != "":
			if step.Event != "" && !surface.IsEndEvent(step.Event) {
				return errors.New("H041").
					WithDetailf("step %d: %q is not a transition-finished event", i+1, step.Event)
			}
			if !defined[step.End] {
				return unknownRef(i, step.End)
			}
		case step.Cancel != "":
			if !defined[step.Cancel] {
				return unknownRef(i, step.Cancel)
			}
		case step.Advance != nil:
			if *step.Advance < 0 {
				return errors.New("H041").
					WithDetailf("step %d: cannot advance by %s", i+1, step.Advance.Duration())
			}
		case step.Expect != nil:
			e := step.Expect
			if e.Ref == "" && e.Queue == nil {
				return errors.New("H041").
					WithDetailf("step %d: expect needs a ref or a queue length", i+1)
			}
			if e.Ref == "" && (e.State != "" || e.Classes != nil) {
				return errors.New("H041").
					WithDetailf("step %d: state and classes need a ref", i+1)
			}
			if e.Ref != "" && !defined[e.Ref] {
				return unknownRef(i, e.Ref)
			}
			if e.State != "" && !validState(e.State) {
				return errors.New("H041").
					WithDetailf("step %d: unknown state %q", i+1, e.State)
			}
		}
	}
	return nil
}

func (s Step) actions() int {
	n := 0
	if s.Notify != nil {
		n++
	}
	if s.End != "" {
		n++
	}
	if s.Advance != nil {
		n++
	}
	if s.Cancel != "" {
		n++
	}
	if s.Expect != nil {
		n++
	}
	return n
}

// Describe returns a short human-readable form of the step.
func (s Step) Describe() string {
	switch {
	case s.Notify != nil:
		desc := fmt.Sprintf("notify %s %q", s.Notify.Type, s.Notify.Message)
		if s.Notify.As != "" {
			desc += " as " + s.Notify.As
		}
		return desc
	case s.End != "":
		return "end " + s.End + " (" + s.endEvent() + ")"
	case s.Advance != nil:
		return "advance " + s.Advance.Duration().String()
	case s.Cancel != "":
		return "cancel " + s.Cancel
	case s.Expect != nil:
		return "expect " + s.Expect.Ref
	}
	return "?"
}

func (s Step) endEvent() string {
	if s.Event == "" {
		return surface.EventAnimationEnd
	}
	return s.Event
}

// ToastStyles converts the scenario styles, falling back to the defaults
// when none are given.
func (s *Scenario) ToastStyles() map[string]toast.Style {
	if len(s.Styles) == 0 {
		return toast.DefaultStyles()
	}
	styles := make(map[string]toast.Style, len(s.Styles))
	for typ, st := range s.Styles {
		styles[typ] = toast.Style{
			Shared: st.Shared,
			Enter:  st.In,
			Paused: st.Paused,
			Exit:   st.Out,
			Hold:   st.Hold.Duration(),
		}
	}
	return styles
}

func unknownRef(step int, ref string) error {
	return errors.New("H042").
		WithDetailf("step %d refers to %q before it is created", step+1, ref)
}

func validState(name string) bool {
	_, ok := parseState(name)
	return ok
}

func parseState(name string) (toast.State, bool) {
	for _, st := range []toast.State{
		toast.StateBeforeStart,
		toast.StateAnimatingIn,
		toast.StatePaused,
		toast.StateAnimatingOut,
		toast.StateRemoved,
	} {
		if st.String() == name {
			return st, true
		}
	}
	return 0, false
}
