// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for notifiers.
//
// Both Metrics and Tracing implement toast.Observer and can be combined
// with toast.Observers:
//
//	metrics := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	tracing := telemetry.NewTracing(telemetry.WithTracerName("myapp"))
//
//	n, err := toast.New(toast.Config{
//	    // ...
//	    Observer: toast.Observers{metrics, tracing},
//	})
//
// # Prometheus Metrics
//
//   - hermes_toasts_shown_total: notifications created, by type
//   - hermes_toasts_evicted_total: notifications pushed out by capacity, by type
//   - hermes_toast_transitions_total: lifecycle transitions, by type and state
//   - hermes_toasts_removed_total: notifications that left the surface, by type
//   - hermes_toasts_active: notifications currently on the surface, by type
//   - hermes_toast_lifetime_seconds: time from creation to removal, by type
//   - hermes_live_sessions: connected live sessions
//   - hermes_live_signals_total: end signals received from live clients
//   - hermes_websocket_errors_total: WebSocket errors by type
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Tracing
//
// Tracing opens one span per notification, from creation to removal, with
// an event per lifecycle transition. The tracer comes from the global
// provider unless WithTracerProvider is given. Configure the provider in
// main() before creating notifiers.
package telemetry
