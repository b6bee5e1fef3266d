package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics provides Prometheus metrics for chart computation.
type Metrics struct {
	config MetricsConfig

	// Chart metrics
	chartsComputed *prometheus.CounterVec
	chartDuration  *prometheus.HistogramVec
	chartsByType   *prometheus.CounterVec
	activeCharts   prometheus.Gauge

	// Imprint search metrics
	imprintSteps    *prometheus.HistogramVec
	imprintDistance prometheus.Histogram

	// Ephemeris provider metrics
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec

	// Error metrics
	errorsByClass *prometheus.CounterVec
	errorsByCode  *prometheus.CounterVec

	// Archive metrics
	storedCharts prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op instance: every recorder checks for nil collectors.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		chartsComputed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "charts_computed_total",
				Help:      "Total number of chart computations by outcome",
			},
			[]string{"status"},
		),
		chartDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chart_duration_seconds",
				Help:      "Duration of chart computation in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		chartsByType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "charts_by_type_total",
				Help:      "Total number of computed charts by type",
			},
			[]string{"type"},
		),
		activeCharts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_chart_computations",
				Help:      "Current number of chart computations in progress",
			},
		),

		imprintSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "imprint_search_steps",
				Help:      "Number of ephemeris samples taken per imprint search phase",
				Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
			},
			[]string{"phase"},
		),
		imprintDistance: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "imprint_search_distance_degrees",
				Help:      "Remaining solar arc error of solved imprint instants",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.0075, 0.01, 0.025, 0.05},
			},
		),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of ephemeris provider calls",
			},
			[]string{"provider", "operation"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Duration of ephemeris provider calls in seconds",
				Buckets:   buckets,
			},
			[]string{"provider", "operation"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of ephemeris provider errors",
			},
			[]string{"provider", "operation"},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
		errorsByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_code_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"code"},
		),

		storedCharts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stored_charts",
				Help:      "Current number of charts in the archive",
			},
		),
	}

	registry.MustRegister(
		m.chartsComputed,
		m.chartDuration,
		m.chartsByType,
		m.activeCharts,
		m.imprintSteps,
		m.imprintDistance,
		m.providerCalls,
		m.providerDuration,
		m.providerErrors,
		m.errorsByClass,
		m.errorsByCode,
		m.storedCharts,
	)

	return m, nil
}

// Chart Metrics

// ChartStarted marks a chart computation as in progress.
func (m *Metrics) ChartStarted() {
	if m.activeCharts == nil {
		return
	}
	m.activeCharts.Inc()
}

// RecordChart records a finished chart computation.
func (m *Metrics) RecordChart(status string, duration time.Duration) {
	if m.chartsComputed == nil {
		return
	}
	m.chartsComputed.WithLabelValues(status).Inc()
	m.chartDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.activeCharts.Dec()
}

// RecordChartType counts a computed chart under its type.
func (m *Metrics) RecordChartType(chartType string) {
	if m.chartsByType == nil {
		return
	}
	m.chartsByType.WithLabelValues(chartType).Inc()
}

// Imprint Metrics

// RecordImprintSearch records the cost and precision of one solved imprint search.
func (m *Metrics) RecordImprintSearch(coarseSteps, fineSteps int, distance float64) {
	if m.imprintSteps == nil {
		return
	}
	m.imprintSteps.WithLabelValues("coarse").Observe(float64(coarseSteps))
	m.imprintSteps.WithLabelValues("fine").Observe(float64(fineSteps))
	m.imprintDistance.Observe(distance)
}

// Provider Metrics

// RecordProviderCall records a provider call with its duration.
func (m *Metrics) RecordProviderCall(provider, operation string, duration time.Duration) {
	if m.providerCalls == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, operation).Inc()
	m.providerDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordProviderError records a provider error.
func (m *Metrics) RecordProviderError(provider, operation string) {
	if m.providerErrors == nil {
		return
	}
	m.providerErrors.WithLabelValues(provider, operation).Inc()
}

// Error Metrics

// RecordError records an error by class and optionally by code.
func (m *Metrics) RecordError(errorClass, errorCode string) {
	if m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
	if errorCode != "" && m.errorsByCode != nil {
		m.errorsByCode.WithLabelValues(errorCode).Inc()
	}
}

// Archive Metrics

// SetStoredCharts sets the current size of the chart archive.
func (m *Metrics) SetStoredCharts(count float64) {
	if m.storedCharts == nil {
		return
	}
	m.storedCharts.Set(count)
}

// Registry exposes the underlying registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer serves the registry on its own listener.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled || m.config.ListenAddress == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", m.config.ListenAddress).Msg("Metrics server stopped")
		}
	}()

	return nil
}
