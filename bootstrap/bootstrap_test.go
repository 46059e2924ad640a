package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/depkit/component"
	"github.com/kbukum/depkit/config"
	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/logger"
	"github.com/kbukum/depkit/observability"
)

// testConfig is a minimal config for testing that satisfies the Config interface.
type testConfig struct {
	config.ServiceConfig
}

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

type greetingKey struct{}

func (greetingKey) LiveValue(context.Context) string    { return "live" }
func (greetingKey) PreviewValue(context.Context) string { return "preview" }

// closingKey returns a value whose Close is observable.
type closingKey struct{ closed *bool }

type closingValue struct{ closed *bool }

func (c closingValue) Close() error {
	*c.closed = true
	return nil
}

func (k closingKey) LiveValue(context.Context) closingValue { return closingValue{closed: k.closed} }
func (k closingKey) TestValue(ctx context.Context) closingValue {
	return k.LiveValue(ctx)
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T, cfg *testConfig, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(io.Discard)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, newTestConfig("test-svc", "1.0.0"))

	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Scope == nil {
		t.Fatal("expected non-nil root scope")
	}
	if app.Scope.Parent() != nil {
		t.Error("expected a root scope")
	}
	if app.Components == nil {
		t.Error("expected non-nil components registry")
	}
	if app.Cfg.Name != "test-svc" {
		t.Errorf("expected cfg.Name 'test-svc', got %q", app.Cfg.Name)
	}
	// Detected under go test.
	if app.Scope.Mode() != di.ModeTest {
		t.Errorf("expected test mode, got %v", app.Scope.Mode())
	}
}

func TestNewAppDefaultsVersionFromBuildInfo(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", ""))
	if app.Version == "" {
		t.Error("expected version from build info")
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{
		ServiceConfig: config.ServiceConfig{
			Environment: "development",
		},
	}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestNewAppRejectsTestModeInProduction(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Environment = "production"
	cfg.Dependencies.Mode = "test"
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Error("expected error for test mode in production")
	}
}

// billingConfig embeds ServiceConfig the way applications do.
type billingConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Billing              struct {
		Currency string `yaml:"currency" mapstructure:"currency"`
	} `yaml:"billing" mapstructure:"billing"`
}

func TestNewAppWithEmbeddedServiceConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yamlContent := `
name: billing
environment: development
dependencies:
  mode: preview
  reporter: silent
billing:
  currency: EUR
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg billingConfig
	if err := config.LoadConfig("billing", &cfg, config.WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	app, err := NewApp(&cfg, WithLogger(logger.Nop()), WithSummaryOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	if app.Cfg.GetServiceConfig().Name != "billing" {
		t.Errorf("expected name 'billing', got %q", app.Cfg.GetServiceConfig().Name)
	}
	if app.Cfg.Billing.Currency != "EUR" {
		t.Errorf("expected application section to load, got %q", app.Cfg.Billing.Currency)
	}
	if app.Scope.Mode() != di.ModePreview {
		t.Errorf("expected preview mode from embedded config, got %v", app.Scope.Mode())
	}
}

func TestNewAppModeFromConfig(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Dependencies.Mode = "preview"
	app := newTestApp(t, cfg)

	if app.Scope.Mode() != di.ModePreview {
		t.Fatalf("expected preview mode, got %v", app.Scope.Mode())
	}
	if got := di.Resolve(app.Context(context.Background()), greetingKey{}); got != "preview" {
		t.Errorf("expected preview default, got %q", got)
	}
}

func TestNewAppReporterFromConfig(t *testing.T) {
	rec := &di.Recorder{}
	cfg := newTestConfig("test", "1.0")
	cfg.Dependencies.Mode = "test"
	app := newTestApp(t, cfg, WithReporter(rec))

	di.Resolve(app.Context(context.Background()), greetingKey{})
	if len(rec.Diagnostics()) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(rec.Diagnostics()))
	}
}

func TestNewAppDiagnosticsDisabled(t *testing.T) {
	rec := &di.Recorder{}
	disabled := false
	cfg := newTestConfig("test", "1.0")
	cfg.Dependencies.Mode = "test"
	cfg.Dependencies.Diagnostics = &disabled
	app := newTestApp(t, cfg, WithReporter(rec))

	di.Resolve(app.Context(context.Background()), greetingKey{})
	if len(rec.Diagnostics()) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(rec.Diagnostics()))
	}
}

func TestNewAppScopeOptionsOverrideConfig(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Dependencies.Mode = "test"
	app := newTestApp(t, cfg, WithScopeOptions(di.WithMode(di.ModeLive)))

	if app.Scope.Mode() != di.ModeLive {
		t.Errorf("expected live mode, got %v", app.Scope.Mode())
	}
}

func TestNewAppRegistersTelemetryComponents(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Telemetry.Enabled = true
	app := newTestApp(t, cfg)

	if app.Components.Get("tracing") == nil || app.Components.Get("metrics") == nil {
		t.Fatalf("expected tracing and metrics components, got %d components", len(app.Components.All()))
	}
	desc := app.Components.Get("tracing").(component.Describable).Describe()
	if !strings.Contains(desc.Details, "localhost:4318") {
		t.Errorf("expected default endpoint in %q", desc.Details)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	if err := app.RegisterComponent(&mockComponent{name: "exporter"}); err != nil {
		t.Fatalf("RegisterComponent failed: %v", err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "exporter"}); err == nil {
		t.Error("expected error for duplicate component registration")
	}
}

func TestHookErrorStopsExecution(t *testing.T) {
	secondCalled := false
	hooks := []Hook{
		func(ctx context.Context) error { return fmt.Errorf("fail") },
		func(ctx context.Context) error { secondCalled = true; return nil },
	}
	if err := runHooks(context.Background(), hooks); err == nil {
		t.Error("expected error from failing hook")
	}
	if secondCalled {
		t.Error("expected second hook not to be called after first fails")
	}
}

func TestReadyCheck(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	app.RegisterComponent(&mockComponent{
		name:   "exporter",
		health: component.Health{Name: "exporter", Status: component.StatusHealthy},
	})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("expected no error for all healthy, got %v", err)
	}

	app.RegisterComponent(&mockComponent{
		name:   "collector",
		health: component.Health{Name: "collector", Status: component.StatusDegraded, Message: "slow"},
	})
	err := app.ReadyCheck(context.Background())
	if err == nil || !strings.Contains(err.Error(), "collector=degraded(slow)") {
		t.Errorf("expected degraded collector in error, got %v", err)
	}
}

func TestDefaultGracefulTimeout(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected 15s default, got %v", app.gracefulTimeout)
	}
	app = newTestApp(t, newTestConfig("test", "1.0"), WithGracefulTimeout(30*time.Second))
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %v", app.gracefulTimeout)
	}
}

func TestRunTaskCarriesRootScope(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	var seen *di.Scope
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		seen = di.FromContext(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if seen != app.Scope {
		t.Error("expected task context to carry the root scope")
	}
	if !app.Scope.Closed() {
		t.Error("expected root scope to be closed after the task")
	}
}

func TestRunTaskClosesMemoizedValues(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Dependencies.Mode = "live"
	app := newTestApp(t, cfg)

	closed := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		di.Resolve(ctx, closingKey{closed: &closed})
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !closed {
		t.Error("expected memoized closer to be closed on shutdown")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	want := errors.New("task failed")

	err := app.RunTask(context.Background(), func(ctx context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	ctx, cancel := context.WithCancel(context.Background())

	err := app.RunTask(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	order := []string{}
	comp := &mockComponent{name: "exporter", health: component.Health{Name: "exporter", Status: component.StatusHealthy}}
	app.RegisterComponent(comp)
	app.OnStart(func(ctx context.Context) error { order = append(order, "start"); return nil })
	app.OnReady(func(ctx context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(ctx context.Context) error {
		if app.Scope.Closed() {
			t.Error("expected root scope open while OnStop hooks run")
		}
		order = append(order, "stop")
		return nil
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if strings.Join(order, ",") != "start,ready,task,stop" {
		t.Errorf("unexpected lifecycle order %v", order)
	}
	if !comp.started || !comp.stopped {
		t.Errorf("expected component started and stopped, got started=%v stopped=%v", comp.started, comp.stopped)
	}
}

func TestRunTaskStartErrors(t *testing.T) {
	t.Run("component", func(t *testing.T) {
		app := newTestApp(t, newTestConfig("test", "1.0"))
		app.RegisterComponent(&mockComponent{name: "exporter", startErr: errors.New("refused")})
		if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
			t.Error("expected component start error")
		}
	})
	t.Run("onStart", func(t *testing.T) {
		app := newTestApp(t, newTestConfig("test", "1.0"))
		app.OnStart(func(context.Context) error { return errors.New("boom") })
		if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
			t.Error("expected onStart error")
		}
	})
	t.Run("onReady", func(t *testing.T) {
		app := newTestApp(t, newTestConfig("test", "1.0"))
		app.OnReady(func(context.Context) error { return errors.New("boom") })
		if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
			t.Error("expected onReady error")
		}
	})
}

func TestRunTaskStopErrors(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	app.RegisterComponent(&mockComponent{
		name:    "exporter",
		stopErr: errors.New("flush failed"),
		health:  component.Health{Name: "exporter", Status: component.StatusHealthy},
	})

	err := app.RunTask(context.Background(), func(context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "flush failed") {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestRunBlocksUntilCanceled(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !app.Scope.Closed() {
		t.Error("expected root scope closed after Run")
	}
}

func TestShutdown(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	stopped := false
	app.OnStop(func(ctx context.Context) error {
		if di.FromContext(ctx) != app.Scope {
			t.Error("expected OnStop context to carry the root scope")
		}
		stopped = true
		return nil
	})

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !stopped {
		t.Error("expected OnStop hook to run")
	}
}

func TestSummaryDisplaySummary(t *testing.T) {
	var buf bytes.Buffer
	cfg := newTestConfig("billing", "2.1.0")
	cfg.Dependencies.Mode = "live"
	app := newTestApp(t, cfg, WithSummaryOutput(&buf))
	app.Summary.TrackDependency("deps.UUID", "override", "fixed")
	app.RegisterComponent(&mockComponent{
		name:   "exporter",
		health: component.Health{Name: "exporter", Status: component.StatusUnhealthy, Message: "no collector"},
	})
	di.Resolve(app.Context(context.Background()), greetingKey{})

	app.DisplaySummary()

	out := buf.String()
	for _, want := range []string{
		"billing v2.1.0",
		"Dependencies (mode: live",
		"deps.UUID [override] fixed",
		"bootstrap.greetingKey [live] string",
		"exporter: unhealthy - no collector",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("svc", "1.0")
	s.SetOutput(&buf)
	s.DisplaySummary(di.NewScope(di.WithMode(di.ModeLive)), nil)

	if !strings.Contains(buf.String(), "none resolved yet") {
		t.Errorf("expected empty dependency list, got:\n%s", buf.String())
	}
}

func TestTreePrefix(t *testing.T) {
	if treePrefix(0, 2) != "├──" {
		t.Error("expected ├── for non-last item")
	}
	if treePrefix(1, 2) != "└──" {
		t.Error("expected └── for last item")
	}
}

func TestTelemetryComponentsBeforeStart(t *testing.T) {
	tc := newTracingComponent(observability.DefaultTracerConfig("svc"))
	mc := newMetricsComponent(observability.DefaultMeterConfig("svc"))

	if h := tc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unstarted tracing to be unhealthy, got %s", h.Status)
	}
	if h := mc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unstarted metrics to be unhealthy, got %s", h.Status)
	}
	if err := tc.Stop(context.Background()); err != nil {
		t.Errorf("expected Stop before Start to succeed, got %v", err)
	}
	if err := mc.Stop(context.Background()); err != nil {
		t.Errorf("expected Stop before Start to succeed, got %v", err)
	}
	if mc.Describe().Type != "metrics" {
		t.Errorf("unexpected description %+v", mc.Describe())
	}
}
