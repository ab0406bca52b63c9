package live

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/hermes/pkg/telemetry"
	"github.com/vango-dev/hermes/pkg/toast"
)

// Config configures a live Server.
type Config struct {
	// Title is shown on the demo page.
	Title string

	// Styles, ListClasses and MaxNotifications configure each session's
	// notifier. See toast.Config.
	Styles           map[string]toast.Style
	ListClasses      []string
	MaxNotifications int

	// Observer is shared by every session's notifier. It must be safe for
	// concurrent use.
	Observer toast.Observer

	// Metrics records session level metrics and enables /metrics.
	Metrics *telemetry.Metrics

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// ReadTimeout is how long a session waits for any client frame,
	// pongs included.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// HeartbeatInterval is the ping period. Must be below ReadTimeout.
	HeartbeatInterval time.Duration

	// MaxMessageSize limits client frames in bytes.
	MaxMessageSize int64

	// MaxEventQueue is the capacity of each session's dispatch queue.
	MaxEventQueue int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin validates WebSocket origins. Nil allows same-origin only.
	CheckOrigin func(*http.Request) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the default styles and timeouts.
func DefaultConfig() Config {
	return Config{
		Title:             "hermes",
		Styles:            toast.DefaultStyles(),
		ListClasses:       []string{"toasts"},
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    4 * 1024,
		MaxEventQueue:     256,
		ShutdownTimeout:   10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultConfig. Styles are left alone.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MaxEventQueue <= 0 {
		c.MaxEventQueue = d.MaxEventQueue
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
