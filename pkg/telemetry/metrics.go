package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/hermes/pkg/toast"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hermes").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for notification lifetime.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the lifetime histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "hermes",
		Buckets:   []float64{0.5, 1, 2, 3, 5, 8, 13, 30, 60},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records notifier and live session metrics. It is safe for
// concurrent use, so one instance can serve every session of a server.
type Metrics struct {
	shown       *prometheus.CounterVec
	evicted     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	removed     *prometheus.CounterVec
	abandoned   *prometheus.CounterVec
	active      *prometheus.GaugeVec
	lifetime    *prometheus.HistogramVec

	sessions prometheus.Gauge
	signals  *prometheus.CounterVec
	wsErrors *prometheus.CounterVec
}

var _ toast.Observer = (*Metrics)(nil)

// NewMetrics registers the metrics with the configured registry. Creating
// two instances against the same registry panics, as with any duplicate
// Prometheus registration.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		shown: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_shown_total",
			Help:        "Total number of notifications created",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		evicted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_evicted_total",
			Help:        "Total number of notifications cancelled to respect the capacity limit",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		abandoned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_abandoned_total",
			Help:        "Total number of notifications dropped unfinished when their notifier closed",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_transitions_total",
			Help:        "Total number of notification lifecycle transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "state"}),

		removed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_removed_total",
			Help:        "Total number of notifications removed from the surface",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_active",
			Help:        "Number of notifications currently on the surface",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		lifetime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_lifetime_seconds",
			Help:        "Time from notification creation to removal in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_sessions",
			Help:        "Number of connected live sessions",
			ConstLabels: config.ConstLabels,
		}),

		signals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_signals_total",
			Help:        "Total end signals received from live clients",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Shown implements toast.Observer.
func (m *Metrics) Shown(n *toast.Notification) {
	m.shown.WithLabelValues(n.Type()).Inc()
	m.active.WithLabelValues(n.Type()).Inc()
}

// StateChanged implements toast.Observer.
func (m *Metrics) StateChanged(n *toast.Notification, _, to toast.State) {
	m.transitions.WithLabelValues(n.Type(), to.String()).Inc()
}

// Evicted implements toast.Observer.
func (m *Metrics) Evicted(n *toast.Notification) {
	m.evicted.WithLabelValues(n.Type()).Inc()
}

// Removed implements toast.Observer.
func (m *Metrics) Removed(n *toast.Notification, lifetime time.Duration) {
	m.removed.WithLabelValues(n.Type()).Inc()
	m.active.WithLabelValues(n.Type()).Dec()
	m.lifetime.WithLabelValues(n.Type()).Observe(lifetime.Seconds())
}

// Abandoned implements toast.Observer.
func (m *Metrics) Abandoned(n *toast.Notification) {
	m.abandoned.WithLabelValues(n.Type()).Inc()
	m.active.WithLabelValues(n.Type()).Dec()
}

// RecordSessionOpen records a new live session.
func (m *Metrics) RecordSessionOpen() {
	m.sessions.Inc()
}

// RecordSessionClose records a live session ending.
func (m *Metrics) RecordSessionClose() {
	m.sessions.Dec()
}

// RecordSignal records an end signal received from a live client.
func (m *Metrics) RecordSignal(event string) {
	m.signals.WithLabelValues(event).Inc()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}
