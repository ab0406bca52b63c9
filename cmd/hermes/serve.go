package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hermes/internal/config"
	"github.com/vango-dev/hermes/pkg/live"
	"github.com/vango-dev/hermes/pkg/telemetry"
	"github.com/vango-dev/hermes/pkg/toast"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live demo server",
		Long: `Start the live demo server.

Each browser tab gets its own notifier. Notifications can be raised
from the page or posted to every tab at once:

  curl -d 'Deployed' localhost:3000/api/notify/success

Configuration is read from hermes.json in the working directory, or
from --config. HERMES_* environment variables override the file.

metrics.enabled exposes Prometheus metrics on /metrics. tracing.enabled
records one span per notification on the global OpenTelemetry tracer
provider. This command installs no provider or exporter, so the spans
are discarded unless hermes is embedded in a program that registers one
with otel.SetTracerProvider.

Examples:
  hermes serve
  hermes serve --port=8080 --max=3
  hermes serve --config=./demo/hermes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			return runServe(configPath, func(cfg *config.Config) {
				if flags.Changed("port") {
					cfg.Port = port
				}
				if flags.Changed("host") {
					cfg.Host = host
				}
				if flags.Changed("max") {
					cfg.MaxNotifications = limit
				}
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to hermes.json (default ./hermes.json if present)")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to run on")
	cmd.Flags().StringVarP(&host, "host", "H", config.DefaultHost, "Host to bind to")
	cmd.Flags().IntVarP(&limit, "max", "m", 0, "Maximum visible notifications (0 = unbounded)")

	return cmd
}

func runServe(configPath string, override func(*config.Config)) error {
	if configPath == "" {
		configPath = config.Discover(".")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	override(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.Default()

	var observers toast.Observers
	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics(telemetry.WithNamespace(cfg.Metrics.Namespace))
		observers = append(observers, metrics)
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, telemetry.NewTracing(telemetry.WithTracerName(cfg.Tracing.TracerName)))
		logger.Warn("tracing enabled without an exporter; spans go to the global otel provider",
			"tracer", cfg.Tracing.TracerName)
	}

	server, err := live.New(live.Config{
		Styles:           cfg.ToastStyles(),
		ListClasses:      cfg.ListClasses,
		MaxNotifications: cfg.MaxNotifications,
		Observer:         observers,
		Metrics:          metrics,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	if cfg.Path() != "" {
		info("Config:  %s", cfg.Path())
	}
	info("Types:   %v", server.Types())
	if cfg.MaxNotifications > 0 {
		info("Limit:   %d", cfg.MaxNotifications)
	}
	success("Listening on %s", cfg.URL())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, cfg.Address())
}
