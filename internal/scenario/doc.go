// Package scenario runs scripted notification sequences against a manual
// clock and an in-memory document.
//
// A scenario is a YAML file:
//
//	name: eviction
//	max_notifications: 2
//	steps:
//	  - notify: {type: success, message: "Saved", as: a}
//	  - end: a
//	  - advance: 3s
//	  - cancel: a
//	  - expect: {ref: a, state: animating-out}
//
// Steps run in order. notify creates a notification and names it; end
// delivers a transition-finished signal to a named notification (event
// selects the signal, default animationend); advance moves the clock;
// cancel calls Cancel; expect checks state, classes or queue length.
// Failed expectations are collected on the Result rather than stopping
// the run.
package scenario
