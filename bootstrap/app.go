package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/depkit/component"
	"github.com/kbukum/depkit/config"
	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/logger"
	"github.com/kbukum/depkit/observability"
	"github.com/kbukum/depkit/version"
)

// App owns a process's root dependency scope and the infrastructure it
// depends on. The type parameter C is the config type; any struct embedding
// config.ServiceConfig satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return billing.Run(ctx) // ctx carries app.Scope
//	})
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Scope      *di.Scope
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application from a typed config. It applies defaults,
// validates the config, initializes the logger and builds the root scope.
// Telemetry exporters are registered as components and started by Run or
// RunTask.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	if base.Version == "" {
		base.Version = version.Get().Short()
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Components = component.NewRegistry(app.Logger.WithComponent("component"))
	if base.Telemetry.Enabled {
		if err := registerTelemetry(app.Components, base); err != nil {
			return nil, err
		}
	}

	scope, err := newRootScope(base, app.Logger, o)
	if err != nil {
		return nil, err
	}
	app.Scope = scope

	app.Summary = NewSummary(base.Name, base.Version)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// newRootScope derives the root scope options from configuration.
func newRootScope(base *config.ServiceConfig, log *logger.Logger, o *appOptions) (*di.Scope, error) {
	mode := di.DetectMode()
	if base.Dependencies.Mode != "" {
		m, err := di.ParseMode(base.Dependencies.Mode)
		if err != nil {
			return nil, fmt.Errorf("dependencies mode: %w", err)
		}
		mode = m
	}

	scopeLog := log.WithComponent("di")
	reporter := o.reporter
	if reporter == nil {
		switch base.Dependencies.Reporter {
		case "silent":
			reporter = di.SilentReporter()
		default:
			reporter = di.LogReporter(scopeLog)
		}
	}

	metrics, err := observability.NewResolutionMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		return nil, fmt.Errorf("resolution metrics: %w", err)
	}

	scopeOpts := []di.Option{
		di.WithMode(mode),
		di.WithReporter(reporter),
		di.WithLogger(scopeLog),
		di.WithMetrics(metrics),
		di.WithDiagnostics(base.Dependencies.DiagnosticsEnabled()),
	}
	return di.NewScope(append(scopeOpts, o.scopeOptions...)...), nil
}

func registerTelemetry(r *component.Registry, base *config.ServiceConfig) error {
	tc := observability.DefaultTracerConfig(base.Name)
	tc.ServiceVersion = base.Version
	tc.Environment = base.Environment
	tc.Endpoint = base.Telemetry.Endpoint
	tc.Insecure = base.Telemetry.Insecure
	tc.SampleRate = base.Telemetry.SampleRate
	if err := r.Register(newTracingComponent(tc)); err != nil {
		return err
	}

	mc := observability.DefaultMeterConfig(base.Name)
	mc.ServiceVersion = base.Version
	mc.Environment = base.Environment
	mc.Endpoint = base.Telemetry.Endpoint
	mc.Insecure = base.Telemetry.Insecure
	return r.Register(newMetricsComponent(mc))
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// Context returns a copy of ctx carrying the root scope.
func (a *App[C]) Context(ctx context.Context) context.Context {
	return a.Scope.Context(ctx)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the lifecycle for long-running services:
// components → OnStart hooks → ReadyCheck → OnReady hooks →
// block on signal → graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop(ctx)
}

// RunTask executes a finite task with the full bootstrap lifecycle. The
// task's context carries the root scope and is canceled on SIGINT/SIGTERM.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	ctx = a.Context(ctx)
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(ctx); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup performs the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		logger.FieldMode, a.Scope.Mode().String(),
	))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// DisplaySummary writes the startup summary.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Scope, a.Components)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop(a.Context(ctx))
}

// stop runs OnStop hooks, closes the root scope and then stops components,
// all within the graceful timeout.
func (a *App[C]) stop(parent context.Context) error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		shutdownErr = err
	}

	if err := a.Scope.Close(); err != nil {
		a.Logger.Error("Root scope close error", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
