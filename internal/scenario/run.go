package scenario

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/hermes/pkg/clock"
	"github.com/vango-dev/hermes/pkg/dom"
	"github.com/vango-dev/hermes/pkg/render"
	"github.com/vango-dev/hermes/pkg/toast"
)

// Snapshot is the observed state of one notification after a step.
type Snapshot struct {
	Ref     string
	Type    string
	Message string
	State   toast.State
	Classes []string
}

// Row records the outcome of one step.
type Row struct {
	Step          int
	Action        string
	Elapsed       time.Duration
	Queue         int
	Pending       int // armed hold timers
	Notifications []Snapshot
}

// Result is the outcome of a scenario run.
type Result struct {
	Name     string
	Rows     []Row
	Failures []string

	// HTML is the final notification list, pretty printed.
	HTML string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Option configures Run.
type Option func(*runner)

// WithObserver attaches an observer to the notifier under test.
func WithObserver(o toast.Observer) Option {
	return func(r *runner) {
		r.observer = o
	}
}

// WithLogger sets the logger for the notifier under test.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		r.logger = l
	}
}

type runner struct {
	scenario *Scenario
	observer toast.Observer
	logger   *slog.Logger

	doc      *dom.Document
	clk      *clock.Manual
	notifier *toast.Notifier
	start    time.Time

	refs  map[string]*toast.Notification
	order []string
}

// Run executes the scenario against a fresh document and manual clock.
// The scenario is validated first. Run returns an error only when the
// scenario is invalid or a step cannot be carried out; failed expectations
// are reported on the Result.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	r := &runner{
		scenario: s,
		logger:   slog.Default().With("component", "scenario", "scenario", s.Name),
		doc:      dom.NewDocument(),
		clk:      clock.NewManual(time.Time{}),
		refs:     make(map[string]*toast.Notification),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.clk.Now()

	notifier, err := toast.New(toast.Config{
		Surface:          r.doc,
		Target:           r.doc.Body(),
		Styles:           s.ToastStyles(),
		ListClasses:      s.ListClasses,
		MaxNotifications: s.MaxNotifications,
		Clock:            r.clk,
		Logger:           r.logger,
		Observer:         r.observer,
	})
	if err != nil {
		return nil, err
	}
	r.notifier = notifier

	result := &Result{Name: s.Name}
	for i, step := range s.Steps {
		failures, err := r.exec(i, step)
		if err != nil {
			return nil, err
		}
		result.Failures = append(result.Failures, failures...)
		result.Rows = append(result.Rows, r.row(i, step))
	}

	html, err := render.NewRenderer(render.RendererConfig{Pretty: true}).
		RenderToString(notifier.List().(*dom.Node))
	if err != nil {
		return nil, err
	}
	result.HTML = html
	return result, nil
}

func (r *runner) exec(i int, step Step) ([]string, error) {
	switch {
	case step.Notify != nil:
		n, err := r.notifier.Notify(step.Notify.Type, toast.Text(step.Notify.Message))
		if err != nil {
			return nil, err
		}
		ref := step.Notify.As
		if ref == "" {
			ref = "#" + strconv.Itoa(len(r.order)+1)
		}
		r.refs[ref] = n
		r.order = append(r.order, ref)

	case step.End != "":
		r.element(step.End).Fire(step.endEvent())

	case step.Advance != nil:
		r.clk.Advance(step.Advance.Duration())

	case step.Cancel != "":
		r.refs[step.Cancel].Cancel()

	case step.Expect != nil:
		return r.check(i, step.Expect), nil
	}
	return nil, nil
}

func (r *runner) element(ref string) *dom.Node {
	return r.refs[ref].Element().(*dom.Node)
}

func (r *runner) check(i int, e *Expectation) []string {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf("step %d: ", i+1)+fmt.Sprintf(format, args...))
	}

	if e.Queue != nil && r.notifier.Len() != *e.Queue {
		fail("queue length = %d, want %d", r.notifier.Len(), *e.Queue)
	}
	if e.Ref == "" {
		return failures
	}

	n := r.refs[e.Ref]
	if e.State != "" {
		want, _ := parseState(e.State)
		if n.State() != want {
			fail("%s state = %s, want %s", e.Ref, n.State(), want)
		}
	}
	if e.Classes != nil {
		got := sortedClasses(n)
		want := slices.Clone(e.Classes)
		sort.Strings(want)
		if !slices.Equal(got, want) {
			fail("%s classes = %v, want %v", e.Ref, got, want)
		}
	}
	return failures
}

func (r *runner) row(i int, step Step) Row {
	row := Row{
		Step:    i + 1,
		Action:  step.Describe(),
		Elapsed: r.clk.Now().Sub(r.start),
		Queue:   r.notifier.Len(),
		Pending: r.clk.Pending(),
	}
	for _, ref := range r.order {
		n := r.refs[ref]
		row.Notifications = append(row.Notifications, Snapshot{
			Ref:     ref,
			Type:    n.Type(),
			Message: n.Message(),
			State:   n.State(),
			Classes: n.Element().Classes(),
		})
	}
	return row
}

// Summary renders the row's notifications as "ref=state" pairs.
func (row Row) Summary() string {
	parts := make([]string, 0, len(row.Notifications))
	for _, s := range row.Notifications {
		parts = append(parts, s.Ref+"="+s.State.String())
	}
	return strings.Join(parts, " ")
}

func sortedClasses(n *toast.Notification) []string {
	cs := n.Element().Classes()
	sort.Strings(cs)
	return cs
}
