package di

import (
	"context"
	"sync"

	"github.com/kbukum/depkit/errors"
	"github.com/kbukum/depkit/logger"
)

// Reporter receives diagnostics. Implementations must be safe for concurrent
// use and must not resolve dependencies.
type Reporter interface {
	Report(ctx context.Context, d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, d Diagnostic)

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, d Diagnostic) { f(ctx, d) }

type logReporter struct {
	log *logger.Logger
}

// LogReporter writes diagnostics to l. MISCONFIGURED_DEFAULT is logged at
// error level, everything else at warn.
func LogReporter(l *logger.Logger) Reporter {
	if l == nil {
		l = logger.Nop()
	}
	return &logReporter{log: l}
}

func (r *logReporter) Report(ctx context.Context, d Diagnostic) {
	fields := logger.Fields(
		logger.FieldCode, string(d.Kind),
		logger.FieldKey, d.Key,
		logger.FieldScopeID, d.ScopeID,
		logger.FieldMode, d.Mode.String(),
	)
	if d.Value != "" {
		fields[logger.FieldValueType] = d.Value
	}
	if d.Accessor != "" {
		fields[logger.FieldDependency] = d.Accessor
	}
	if loc := d.Location.String(); loc != "" {
		fields[logger.FieldLocation] = loc
	}
	l := r.log.WithContext(ctx)
	if d.Kind == errors.ErrCodeMisconfiguredDefault {
		l.Error(d.Message, fields)
		return
	}
	l.Warn(d.Message, fields)
}

// SilentReporter discards diagnostics.
func SilentReporter() Reporter {
	return ReporterFunc(func(context.Context, Diagnostic) {})
}

// MultiReporter forwards each diagnostic to every reporter in order.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(ctx context.Context, d Diagnostic) {
		for _, r := range reporters {
			r.Report(ctx, d)
		}
	})
}

// Recorder is a Reporter that keeps every diagnostic it receives.
type Recorder struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

// Report records d.
func (r *Recorder) Report(_ context.Context, d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns a copy of the recorded diagnostics.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}

// Kinds returns the recorded diagnostic kinds in order.
func (r *Recorder) Kinds() []errors.ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]errors.ErrorCode, len(r.diagnostics))
	for i, d := range r.diagnostics {
		kinds[i] = d.Kind
	}
	return kinds
}

// Reset drops all recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = nil
}
