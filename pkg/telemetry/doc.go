// Package telemetry provides observability for the bodygraph service.
//
// It combines structured logging (zerolog), distributed tracing
// (OpenTelemetry), Prometheus metrics and an in-process event publisher.
//
// # Usage
//
// Initialize telemetry at startup and attach it to the root context:
//
//	tel, err := telemetry.NewTelemetry(telemetry.DefaultConfig())
//	if err != nil {
//	    log.Fatal().Err(err).Msg("telemetry")
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// Every helper in this package is a no-op when the context carries no
// Telemetry, so library code (the engine, the ephemeris providers) can be
// instrumented unconditionally.
//
// # Chart Requests
//
// A chart request is wrapped in a request span with a chart-scoped logger:
//
//	ctx = telemetry.WithChartContext(ctx, chartID, birth.Instant, birth.Timezone)
//	snap, err := calc.Compute(ctx, birth)
//	telemetry.EndChartContext(ctx, telemetry.ChartOutcome{ChartID: chartID, Type: snap.Type}, err)
//
// EndChartContext records the chart counters and publishes a chart.computed
// or chart.failed event.
//
// Inside the calculator, StartOperation opens child spans for the
// computation and the imprint search:
//
//	op := telemetry.StartOperation(ctx, "chart.imprint")
//	res, err := engine.SolveImprint(op.Ctx, provider, birth, cfg)
//	op.End(err)
//
// Ephemeris calls are far too frequent for per-call spans, so
// RecordProviderOperation only counts and times them.
//
// # Metrics
//
// Key metrics (namespace "bodygraph" by default):
//
//   - bodygraph_charts_computed_total{status}
//   - bodygraph_chart_duration_seconds{status}
//   - bodygraph_charts_by_type_total{type}
//   - bodygraph_imprint_search_steps{phase}
//   - bodygraph_imprint_search_distance_degrees
//   - bodygraph_provider_calls_total{provider,operation}
//   - bodygraph_provider_errors_total{provider,operation}
//   - bodygraph_errors_by_class_total{class}
//   - bodygraph_stored_charts
//
// The registry is served by the HTTP API at /metrics and, when
// MetricsConfig.ListenAddress is set, on a standalone listener.
//
// # Exporters
//
// Tracing supports "otlp" (gRPC), "stdout" and "none".
package telemetry
