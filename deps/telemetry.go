package deps

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/logger"
	"github.com/kbukum/depkit/observability"
)

const instrumentationName = "github.com/kbukum/depkit/deps"

type loggerKey struct{}

func (loggerKey) LiveValue(context.Context) *logger.Logger { return logger.GetGlobalLogger() }
func (loggerKey) TestValue(context.Context) *logger.Logger { return logger.Nop() }

// Logger is the application logger. The global logger when live and a
// disabled logger in tests.
var Logger = di.Property("deps.Logger", loggerKey{})

type tracerKey struct{}

func (tracerKey) LiveValue(context.Context) trace.Tracer {
	return observability.Tracer(instrumentationName)
}

func (tracerKey) TestValue(context.Context) trace.Tracer {
	return tracenoop.NewTracerProvider().Tracer(instrumentationName)
}

// Tracer starts spans. Backed by the global tracer provider when live.
var Tracer = di.Property("deps.Tracer", tracerKey{})

type meterKey struct{}

func (meterKey) LiveValue(context.Context) metric.Meter {
	return observability.Meter(instrumentationName)
}

func (meterKey) TestValue(context.Context) metric.Meter {
	return metricnoop.NewMeterProvider().Meter(instrumentationName)
}

// Meter creates instruments. Backed by the global meter provider when live.
var Meter = di.Property("deps.Meter", meterKey{})
