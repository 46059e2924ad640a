package component

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/depkit/logger"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	starts     int
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.starts++
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func newTestRegistry() *Registry {
	return NewRegistry(logger.Nop())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&mockComponent{name: "tracing"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := r.Register(&mockComponent{name: "tracing"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry()
	r.Register(&mockComponent{name: "tracing"})

	got := r.Get("tracing")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "tracing" {
		t.Errorf("expected 'tracing', got %q", got.Name())
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
	if len(r.All()) != 1 {
		t.Errorf("expected 1 component, got %d", len(r.All()))
	}
}

func TestStartAll(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	tracing := &mockComponent{name: "tracing", startOrder: &order}
	r.Register(tracing)
	r.Register(&mockComponent{name: "metrics", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "tracing" || order[1] != "metrics" {
		t.Errorf("expected start order [tracing, metrics], got %v", order)
	}

	// Already started components are not started twice.
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll failed: %v", err)
	}
	if tracing.starts != 1 {
		t.Errorf("expected 1 start, got %d", tracing.starts)
	}
}

func TestStartAllError(t *testing.T) {
	r := newTestRegistry()
	cause := errors.New("connection refused")
	r.Register(&mockComponent{name: "tracing", startErr: cause})

	err := r.StartAll(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped start error, got %v", err)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "tracing", stopOrder: &order})
	r.Register(&mockComponent{name: "metrics", stopOrder: &order})
	r.Register(&mockComponent{name: "exporter", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 || order[0] != "exporter" || order[1] != "metrics" || order[2] != "tracing" {
		t.Errorf("expected reverse stop order [exporter, metrics, tracing], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "tracing", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := newTestRegistry()
	errA, errB := errors.New("a failed"), errors.New("b failed")
	r.Register(&mockComponent{name: "a", stopErr: errA})
	r.Register(&mockComponent{name: "b", stopErr: errB})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	r := newTestRegistry()
	r.Register(&mockComponent{
		name:   "tracing",
		health: Health{Name: "tracing", Status: StatusHealthy, Message: "exporting"},
	})
	r.Register(&mockComponent{
		name:   "metrics",
		health: Health{Name: "metrics", Status: StatusUnhealthy, Message: "timeout"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected tracing healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected metrics unhealthy, got %s", results[1].Status)
	}
}
