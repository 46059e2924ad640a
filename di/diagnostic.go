package di

import (
	"context"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/depkit/errors"
	"github.com/kbukum/depkit/observability"
)

// Location is the source position that triggered a diagnostic.
type Location struct {
	// File is the file name qualified by its directory, e.g. "deps/clock_test.go".
	File     string
	Line     int
	Function string
}

// String formats the location as file:line.
func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is a non-fatal report about dependency usage.
type Diagnostic struct {
	Kind errors.ErrorCode
	// Key is the key type name, or the stand-in name for UNIMPLEMENTED.
	Key string
	// Value is the value type name, empty when it matches Key.
	Value string
	// Accessor is the property name for property-style access.
	Accessor string
	Location Location
	ScopeID  string
	Mode     Mode
	Message  string
}

// AppError returns the diagnostic as an application error.
func (d Diagnostic) AppError() *errors.AppError {
	err := errors.New(d.Kind, d.Message).WithDetails(map[string]any{
		"key":      d.Key,
		"scope_id": d.ScopeID,
		"mode":     d.Mode.String(),
	})
	err.Diagnostic = true
	if d.Value != "" {
		err.WithDetail("value_type", d.Value)
	}
	if d.Accessor != "" {
		err.WithDetail("accessor", d.Accessor)
	}
	if loc := d.Location.String(); loc != "" {
		err.WithDetail("location", loc)
	}
	return err
}

// String returns the diagnostic message.
func (d Diagnostic) String() string { return d.Message }

// DiagnosticsCompiled reports whether this binary can report diagnostics at
// all. It is false in builds tagged release.
func DiagnosticsCompiled() bool { return diagnosticsEnabled }

// reporting reports whether diagnostics from s reach its reporter.
func (s *Scope) reporting() bool {
	return diagnosticsEnabled && s.diagnostics
}

// report fills in scope fields and forwards d to the scope reporter.
func (s *Scope) report(ctx context.Context, d Diagnostic) {
	d.ScopeID = s.id.String()
	d.Mode = s.Mode()
	s.metrics.RecordDiagnostic(ctx, string(d.Kind), d.Key)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("di.diagnostic", trace.WithAttributes(
			attribute.String(observability.AttrCode, string(d.Kind)),
			attribute.String(observability.AttrKey, d.Key),
		))
	}
	s.reporter.Report(ctx, d)
}

const diPackage = "github.com/kbukum/depkit/di."

// callSite returns the first frame outside this package's non-test code.
func callSite() Location {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		if !strings.HasPrefix(fr.Function, diPackage) || strings.HasSuffix(fr.File, "_test.go") {
			return Location{
				File:     path.Join(path.Base(path.Dir(fr.File)), path.Base(fr.File)),
				Line:     fr.Line,
				Function: fr.Function[strings.LastIndex(fr.Function, "/")+1:],
			}
		}
		if !more {
			return Location{}
		}
	}
}

func unoverriddenDiagnostic(key keyInfo, accessor string) Diagnostic {
	loc := callSite()
	return Diagnostic{
		Kind:     errors.ErrCodeUnoverriddenLiveInTest,
		Key:      key.name,
		Value:    key.valueName,
		Accessor: accessor,
		Location: loc,
		Message:  unoverriddenMessage(key, accessor, loc),
	}
}

func unoverriddenMessage(key keyInfo, accessor string, loc Location) string {
	var b strings.Builder
	subject := fmt.Sprintf("di.Resolve(%s)", key.name)
	if accessor != "" {
		subject = fmt.Sprintf("di.Property(%q)", accessor)
	}
	fmt.Fprintf(&b, "%s has no test implementation, but was accessed from a test context:\n\n", subject)
	if l := loc.String(); l != "" {
		fmt.Fprintf(&b, "  Location:\n    %s\n", l)
	}
	if accessor != "" {
		fmt.Fprintf(&b, "  Dependency:\n    %s\n", accessor)
	}
	fmt.Fprintf(&b, "  Key:\n    %s\n", key.name)
	if key.valueName != "" {
		fmt.Fprintf(&b, "  Value:\n    %s\n", key.valueName)
	}
	b.WriteString("\nDependencies are not allowed to use their live implementations when run\n")
	b.WriteString("from a test context.\n\n")
	b.WriteString("To fix, override the dependency in the scope the test runs in:\n\n")
	b.WriteString("    di.With(ctx, func(o *di.Overrides) {\n")
	if accessor != "" {
		fmt.Fprintf(&b, "        %s.Set(o, …)\n", accessor)
	} else {
		fmt.Fprintf(&b, "        di.Set(o, %s, …)\n", keyLiteral(key.typ))
	}
	b.WriteString("    })\n\n")
	fmt.Fprintf(&b, "To provide a default for every test, implement TestValue on %s.", key.name)
	return b.String()
}

// keyLiteral renders an expression that constructs a key of type t.
func keyLiteral(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Struct:
		return t.String() + "{}"
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		return "&" + t.Elem().String() + "{}"
	default:
		return t.String() + "(…)"
	}
}

func scopeClosedDiagnostic(key keyInfo, accessor, scopeID string) Diagnostic {
	return Diagnostic{
		Kind:     errors.ErrCodeScopeClosed,
		Key:      key.name,
		Value:    key.valueName,
		Accessor: accessor,
		Location: callSite(),
		Message:  errors.ScopeClosed(scopeID, key.name).Message,
	}
}

// reportMisconfigured is called from NoLiveValue when a test-only key is
// resolved outside of test mode.
func reportMisconfigured(ctx context.Context, valueType reflect.Type) {
	s := FromContext(ctx)
	if !s.reporting() {
		return
	}
	name := valueType.String()
	var valueName string
	if n := pathFrom(ctx); n != nil {
		name, valueName = n.key.name, n.key.valueName
	}
	s.report(ctx, Diagnostic{
		Kind:     errors.ErrCodeMisconfiguredDefault,
		Key:      name,
		Value:    valueName,
		Location: callSite(),
		Message:  errors.MisconfiguredDefault(name, s.Mode().String()).Message,
	})
}
