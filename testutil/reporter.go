package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/depkit/di"
)

// Recorder collects diagnostics for later assertions.
type Recorder = di.Recorder

// TBReporter reports each diagnostic as a non-fatal test failure on t.
func TBReporter(t testing.TB) di.Reporter {
	return di.ReporterFunc(func(_ context.Context, d di.Diagnostic) {
		t.Errorf("%s: %s", d.Kind, d.Message)
	})
}
