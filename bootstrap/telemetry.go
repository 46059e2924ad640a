package bootstrap

import (
	"context"
	"fmt"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/depkit/component"
	"github.com/kbukum/depkit/observability"
)

// tracingComponent owns the OTLP tracer provider.
type tracingComponent struct {
	cfg observability.TracerConfig

	mu       sync.Mutex
	provider *sdktrace.TracerProvider
}

func newTracingComponent(cfg observability.TracerConfig) *tracingComponent {
	return &tracingComponent{cfg: cfg}
}

func (c *tracingComponent) Name() string { return "tracing" }

func (c *tracingComponent) Start(ctx context.Context) error {
	tp, err := observability.InitTracer(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.provider = tp
	c.mu.Unlock()
	return nil
}

func (c *tracingComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	tp := c.provider
	c.provider = nil
	c.mu.Unlock()
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

func (c *tracingComponent) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *tracingComponent) Describe() component.Description {
	return component.Description{
		Name:    "Tracing",
		Type:    "tracing",
		Details: fmt.Sprintf("otlp http %s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate),
	}
}

// metricsComponent owns the OTLP meter provider.
type metricsComponent struct {
	cfg observability.MeterConfig

	mu       sync.Mutex
	provider *sdkmetric.MeterProvider
}

func newMetricsComponent(cfg observability.MeterConfig) *metricsComponent {
	return &metricsComponent{cfg: cfg}
}

func (c *metricsComponent) Name() string { return "metrics" }

func (c *metricsComponent) Start(ctx context.Context) error {
	mp, err := observability.InitMeter(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.provider = mp
	c.mu.Unlock()
	return nil
}

func (c *metricsComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	mp := c.provider
	c.provider = nil
	c.mu.Unlock()
	if mp == nil {
		return nil
	}
	return mp.Shutdown(ctx)
}

func (c *metricsComponent) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *metricsComponent) Describe() component.Description {
	return component.Description{
		Name:    "Metrics",
		Type:    "metrics",
		Details: fmt.Sprintf("otlp http %s every %s", c.cfg.Endpoint, c.cfg.Interval),
	}
}
