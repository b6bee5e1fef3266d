package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles logging, tracing, metrics and events.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Events  *EventPublisher
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tracer, err := NewTracer(cfg)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	events, err := NewEventPublisher(cfg.Events)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Events:  events,
		Config:  cfg,
	}, nil
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown stops event delivery and flushes the tracer.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if err := t.Events.Shutdown(ctx); err != nil {
		return err
	}
	return t.Tracer.Shutdown(ctx)
}

// StartMetricsServer starts the standalone metrics listener if configured.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer()
}

// InstrumentedContext carries the span, logger and timer of one operation.
type InstrumentedContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
}

// StartOperation begins an instrumented operation with logging, tracing, and timing.
func StartOperation(ctx context.Context, operation string, attrs ...attribute.KeyValue) *InstrumentedContext {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return &InstrumentedContext{
			Ctx:    ctx,
			Logger: FromContext(ctx),
			Timer:  NewTimer(),
		}
	}

	spanCtx, span := tel.Tracer.StartSpan(ctx, operation, attrs...)

	logger := FromContext(ctx).WithField("operation", operation)
	if span.SpanContext().IsValid() {
		logger = logger.WithFields(map[string]interface{}{
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
		})
	}

	return &InstrumentedContext{
		Ctx:    spanCtx,
		Span:   span,
		Logger: logger,
		Timer:  NewTimer(),
	}
}

// SetAttributes annotates the operation span, if any.
func (ic *InstrumentedContext) SetAttributes(attrs ...attribute.KeyValue) {
	if ic.Span != nil {
		ic.Span.SetAttributes(attrs...)
	}
}

// End finishes the instrumented operation, recording success or failure.
func (ic *InstrumentedContext) End(err error) {
	if ic.Span != nil {
		if err != nil {
			RecordError(ic.Span, err)
		} else {
			RecordSuccess(ic.Span)
		}
		ic.Span.End()
	}
}

// ChartOutcome summarizes a finished chart request for metrics and events.
type ChartOutcome struct {
	ChartID   string
	Type      string
	Profile   string
	Saved     bool
	ErrorCode string
}

// chartSpanKey and chartTimerKey hold the request span and timer.
type chartSpanKey struct{}
type chartTimerKey struct{}

// WithChartContext starts the request span and a chart-scoped logger.
func WithChartContext(ctx context.Context, chartID string, birth time.Time, timezone string) context.Context {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return ctx
	}

	spanCtx, span := tel.Tracer.StartChartSpan(ctx, chartID, birth, timezone)

	logger := FromContext(ctx).WithChartID(chartID).WithBirth(birth, timezone)
	spanCtx = logger.WithContext(spanCtx)

	tel.Metrics.ChartStarted()

	spanCtx = context.WithValue(spanCtx, chartSpanKey{}, span)
	spanCtx = context.WithValue(spanCtx, chartTimerKey{}, NewTimer())
	return spanCtx
}

// EndChartContext closes the request span, records metrics and publishes
// chart.computed or chart.failed.
func EndChartContext(ctx context.Context, outcome ChartOutcome, err error) {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return
	}

	if span, ok := ctx.Value(chartSpanKey{}).(trace.Span); ok {
		if err != nil {
			span.SetAttributes(AttrErrorCode.String(outcome.ErrorCode))
			RecordError(span, err)
		} else {
			span.SetAttributes(AttrChartType.String(outcome.Type))
			RecordSuccess(span)
		}
		span.End()
	}

	var duration time.Duration
	if timer, ok := ctx.Value(chartTimerKey{}).(*Timer); ok {
		duration = timer.Duration()
	}

	if err != nil {
		tel.Metrics.RecordChart("failed", duration)
		_ = tel.Events.PublishChartFailed(outcome.ChartID, outcome.ErrorCode, err.Error())
		return
	}

	tel.Metrics.RecordChart("computed", duration)
	tel.Metrics.RecordChartType(outcome.Type)
	_ = tel.Events.PublishChartComputed(outcome.ChartID, outcome.Type, outcome.Profile, outcome.Saved, duration)
}

// RecordProviderOperation times a provider call and counts its errors. It
// records metrics only: the imprint search calls the provider thousands of
// times per chart.
func RecordProviderOperation(ctx context.Context, providerName, operation string, fn func() error) error {
	tel := FromTelemetryContext(ctx)
	timer := NewTimer()

	err := fn()

	if tel != nil {
		tel.Metrics.RecordProviderCall(providerName, operation, timer.Duration())
		if err != nil {
			tel.Metrics.RecordProviderError(providerName, operation)
		}
	}
	return err
}
