package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/hermes/pkg/toast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for notifiers.
const defaultTracerName = "hermes"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "hermes").
	TracerName string

	// Provider supplies the tracer. Defaults to otel.GetTracerProvider(),
	// which records nothing until the program calls otel.SetTracerProvider.
	Provider trace.TracerProvider

	// IncludeMessage records the notification text as a span attribute.
	// May contain user data - disabled by default.
	IncludeMessage bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(n *toast.Notification) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithIncludeMessage enables recording message text on spans.
func WithIncludeMessage(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludeMessage = include
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(n *toast.Notification) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing opens a span per notification. It is safe for concurrent use.
type Tracing struct {
	config TracingConfig
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[*toast.Notification]trace.Span
}

var _ toast.Observer = (*Tracing)(nil)

// NewTracing creates a tracing observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &Tracing{
		config: config,
		tracer: provider.Tracer(config.TracerName),
		spans:  make(map[*toast.Notification]trace.Span),
	}
}

// Shown implements toast.Observer.
func (t *Tracing) Shown(n *toast.Notification) {
	attrs := []attribute.KeyValue{
		attribute.String("hermes.toast_id", n.ID()),
		attribute.String("hermes.type", n.Type()),
	}
	if t.config.IncludeMessage {
		attrs = append(attrs, attribute.String("hermes.message", n.Message()))
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(n)...)
	}

	_, span := t.tracer.Start(context.Background(), "toast "+n.Type(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	t.mu.Lock()
	t.spans[n] = span
	t.mu.Unlock()
}

// StateChanged implements toast.Observer.
func (t *Tracing) StateChanged(n *toast.Notification, from, to toast.State) {
	if span := t.SpanFor(n); span != nil {
		span.AddEvent(to.String(), trace.WithAttributes(
			attribute.String("hermes.from", from.String()),
		))
	}
}

// Evicted implements toast.Observer.
func (t *Tracing) Evicted(n *toast.Notification) {
	if span := t.SpanFor(n); span != nil {
		span.SetAttributes(attribute.Bool("hermes.evicted", true))
		span.AddEvent("evicted")
	}
}

// Removed implements toast.Observer. It ends the notification's span.
func (t *Tracing) Removed(n *toast.Notification, lifetime time.Duration) {
	t.mu.Lock()
	span, ok := t.spans[n]
	delete(t.spans, n)
	t.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(attribute.Int64("hermes.lifetime_ms", lifetime.Milliseconds()))
	span.SetStatus(codes.Ok, "")
	span.End()
}

// Abandoned implements toast.Observer. It ends the span unfinished.
func (t *Tracing) Abandoned(n *toast.Notification) {
	t.mu.Lock()
	span, ok := t.spans[n]
	delete(t.spans, n)
	t.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(attribute.Bool("hermes.abandoned", true))
	span.AddEvent("abandoned")
	span.End()
}

// SpanFor returns the open span for n, or nil.
func (t *Tracing) SpanFor(n *toast.Notification) trace.Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.spans[n]
}

// OpenSpans returns the number of notifications with an open span.
func (t *Tracing) OpenSpans() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}
