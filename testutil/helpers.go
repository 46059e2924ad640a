package testutil

import (
	"context"
	"slices"
	"testing"

	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/errors"
	"github.com/kbukum/depkit/logger"
)

// NewScope returns a context carrying a test-mode scope configured by the
// given functions. Diagnostics fail t and the scope is closed on cleanup.
func NewScope(t testing.TB, configure ...func(o *di.Overrides)) context.Context {
	t.Helper()
	return T(t).Scope(configure...)
}

// THelper builds test scopes bound to a testing.TB.
type THelper struct {
	t       testing.TB
	mode    di.Mode
	lenient bool
	rec     *Recorder
}

// T wraps t. Scopes created from the helper run in test mode and fail t on
// every diagnostic.
//
// Example:
//
//	func TestSignup(t *testing.T) {
//	    ctx := testutil.T(t).Scope(func(o *di.Overrides) {
//	        deps.UUID.Set(o, deps.IncrementingUUID())
//	    })
//	    // scope is closed automatically when the test ends
//	}
func T(t testing.TB) *THelper {
	return &THelper{t: t, mode: di.ModeTest, rec: &Recorder{}}
}

// WithMode sets the mode of scopes created afterwards.
func (h *THelper) WithMode(m di.Mode) *THelper {
	h.mode = m
	return h
}

// Lenient records diagnostics without failing the test.
func (h *THelper) Lenient() *THelper {
	h.lenient = true
	return h
}

// Scope creates a root scope, applies configure in a child and returns a
// context carrying the child. Both are closed when the test ends.
func (h *THelper) Scope(configure ...func(o *di.Overrides)) context.Context {
	h.t.Helper()
	reporter := di.Reporter(h.rec)
	if !h.lenient {
		reporter = di.MultiReporter(h.rec, TBReporter(h.t))
	}
	root := di.NewScope(
		di.WithMode(h.mode),
		di.WithReporter(reporter),
		di.WithLogger(logger.Nop()),
	)
	ctx := di.With(root.Context(context.Background()), configure...)
	h.t.Cleanup(func() {
		if err := di.FromContext(ctx).Close(); err != nil {
			h.t.Errorf("failed to close test scope: %v", err)
		}
		if err := root.Close(); err != nil {
			h.t.Errorf("failed to close root scope: %v", err)
		}
	})
	return ctx
}

// Recorder returns the recorder shared by every scope of the helper.
func (h *THelper) Recorder() *Recorder {
	return h.rec
}

// Diagnostics returns the diagnostics recorded so far.
func (h *THelper) Diagnostics() []di.Diagnostic {
	return h.rec.Diagnostics()
}

// ExpectDiagnostic fails the test unless a diagnostic with code was recorded.
func (h *THelper) ExpectDiagnostic(code errors.ErrorCode) {
	h.t.Helper()
	if !slices.Contains(h.rec.Kinds(), code) {
		h.t.Errorf("expected a %s diagnostic, got %v", code, h.rec.Kinds())
	}
}

// ExpectNoDiagnostics fails the test if any diagnostic was recorded.
func (h *THelper) ExpectNoDiagnostics() {
	h.t.Helper()
	for _, d := range h.rec.Diagnostics() {
		h.t.Errorf("unexpected diagnostic %s: %s", d.Kind, d.Message)
	}
}
