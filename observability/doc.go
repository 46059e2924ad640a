// Package observability provides OpenTelemetry tracing and metrics for
// dependency resolution.
//
// The di package records one counter increment per resolution, a histogram
// sample and a span per factory invocation, and a counter increment per
// diagnostic. Without InitTracer/InitMeter the global no-op providers make
// all of this free.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewResolutionMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordResolve(ctx, "deps.uuidKey", "live", observability.SourceComputed)
package observability
