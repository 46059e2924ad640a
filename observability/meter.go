package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/depkit/logger"
)

// Resolution sources recorded on di.resolve.total.
const (
	SourceOverride  = "override"
	SourceCached    = "cached"
	SourceInherited = "inherited"
	SourceComputed  = "computed"
	SourceTransient = "transient"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ResolutionMetrics holds the instruments recorded by the resolver.
type ResolutionMetrics struct {
	resolveTotal    metric.Int64Counter
	factoryDuration metric.Float64Histogram
	diagnosticTotal metric.Int64Counter
	scopeActive     metric.Int64UpDownCounter
}

// NewResolutionMetrics creates resolver instruments on the given meter.
func NewResolutionMetrics(meter metric.Meter) (*ResolutionMetrics, error) {
	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Dependency resolutions by key, variant and source"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	factoryDuration, err := meter.Float64Histogram("di.factory.duration",
		metric.WithDescription("Duration of default value factory invocations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.factory.duration histogram: %w", err)
	}

	diagnosticTotal, err := meter.Int64Counter("di.diagnostic.total",
		metric.WithDescription("Diagnostics reported by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.diagnostic.total counter: %w", err)
	}

	scopeActive, err := meter.Int64UpDownCounter("di.scope.active",
		metric.WithDescription("Number of open dependency scopes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.scope.active counter: %w", err)
	}

	return &ResolutionMetrics{
		resolveTotal:    resolveTotal,
		factoryDuration: factoryDuration,
		diagnosticTotal: diagnosticTotal,
		scopeActive:     scopeActive,
	}, nil
}

// RecordResolve records one resolution.
func (m *ResolutionMetrics) RecordResolve(ctx context.Context, key, variant, source string) {
	if m == nil {
		return
	}
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrKey, key),
		attribute.String(AttrVariant, variant),
		attribute.String(AttrSource, source),
	))
}

// RecordFactory records one factory invocation.
func (m *ResolutionMetrics) RecordFactory(ctx context.Context, key, variant string, duration time.Duration) {
	if m == nil {
		return
	}
	m.factoryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrKey, key),
		attribute.String(AttrVariant, variant),
	))
}

// RecordDiagnostic records one reported diagnostic.
func (m *ResolutionMetrics) RecordDiagnostic(ctx context.Context, code, key string) {
	if m == nil {
		return
	}
	m.diagnosticTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrCode, code),
		attribute.String(AttrKey, key),
	))
}

// ScopeOpened increments the open scope gauge.
func (m *ResolutionMetrics) ScopeOpened(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.scopeActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrMode, mode)))
}

// ScopeClosed decrements the open scope gauge.
func (m *ResolutionMetrics) ScopeClosed(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.scopeActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrMode, mode)))
}
