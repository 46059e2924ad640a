package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test", buf)
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{Level: "invalid-level", Format: "json", Output: "stdout"}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("di")

	l.Warn("dependency accessed in test", Fields(FieldKey, "deps.uuidKey", FieldVariant, "live"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != "di" {
		t.Errorf("expected component=di, got %v", entry[FieldComponent])
	}
	if entry[FieldKey] != "deps.uuidKey" {
		t.Errorf("expected key field, got %v", entry[FieldKey])
	}
	if entry["level"] != "warn" {
		t.Errorf("expected level=warn, got %v", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info to be filtered, got %q", buf.String())
	}
	l.Error("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected error to be written, got %q", buf.String())
	}
}

func TestEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")
	if l.Enabled(zerolog.DebugLevel) {
		t.Error("debug should not be enabled at info level")
	}
	if !l.Enabled(zerolog.WarnLevel) {
		t.Error("warn should be enabled at info level")
	}
	if Nop().Enabled(zerolog.ErrorLevel) {
		t.Error("nop logger should not be enabled")
	}
}

func TestWithContext_NoSpan(t *testing.T) {
	l := NewDefault("test")
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected same logger when context has no span")
	}
}

func TestWithContext_Span(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.WithContext(ctx).Info("traced")
	if !strings.Contains(buf.String(), traceID.String()) {
		t.Errorf("expected trace id in output, got %q", buf.String())
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithFields(Fields(FieldScopeID, "s-1")).WithError(os.ErrNotExist)
	l.Info("x")
	if !strings.Contains(buf.String(), "s-1") || !strings.Contains(buf.String(), "file does not exist") {
		t.Errorf("expected fields and error in output, got %q", buf.String())
	}
}

func TestInit(t *testing.T) {
	cfg := Config{Level: "info", Format: "console", ServiceName: "billing"}
	Init(&cfg)
	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if gl.service != "billing" {
		t.Errorf("expected service 'billing', got %q", gl.service)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if got := GetGlobalLogger(); got != l {
		t.Error("expected custom global logger")
	}
}

func TestRegistry(t *testing.T) {
	l := NewDefault("registered")
	Register("resolver", l)
	defer Unregister("resolver")

	if got := Get("resolver"); got != l {
		t.Error("expected registered logger")
	}
	if got := Get("unregistered"); got == nil {
		t.Error("expected fallback logger")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "loud"}, true},
		{"bad format", Config{Format: "xml"}, true},
		{"bad output", Config{Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFieldsOddArgs(t *testing.T) {
	f := Fields("a", 1, "dangling")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields: %v", f)
	}
}
