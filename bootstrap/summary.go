package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/depkit/component"
	"github.com/kbukum/depkit/di"
)

// DependencyInfo describes a dependency the application declared up front.
type DependencyInfo struct {
	Name    string
	Variant string
	Note    string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	dependencies    []DependencyInfo
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName:  serviceName,
		version:      version,
		dependencies: make([]DependencyInfo, 0),
		out:          os.Stdout,
	}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackDependency lists a dependency in the summary in addition to the
// entries already memoized in the root scope.
func (s *Summary) TrackDependency(name, variant, note string) {
	s.dependencies = append(s.dependencies, DependencyInfo{Name: name, Variant: variant, Note: note})
}

// DisplaySummary writes the bootstrap summary: the root scope, tracked and
// memoized dependencies, infrastructure and live component health.
func (s *Summary) DisplaySummary(scope *di.Scope, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if scope != nil {
		diagnostics := "on"
		if !di.DiagnosticsCompiled() {
			diagnostics = "compiled out"
		}
		fmt.Fprintf(w, "🧩 Dependencies (mode: %s, diagnostics: %s)\n", scope.Mode(), diagnostics)
		deps := s.dependencies
		for _, e := range scope.Snapshot() {
			deps = append(deps, DependencyInfo{Name: e.Key, Variant: e.Variant.String(), Note: e.ValueType})
		}
		if len(deps) == 0 {
			fmt.Fprintf(w, "   └── none resolved yet\n")
		}
		for i, d := range deps {
			line := fmt.Sprintf("%s [%s]", d.Name, d.Variant)
			if d.Note != "" {
				line += " " + d.Note
			}
			fmt.Fprintf(w, "   %s %s %s\n", treePrefix(i, len(deps)), variantIcon(d.Variant), line)
		}
		fmt.Fprintf(w, "\n")
	}

	if registry == nil {
		return
	}
	components := registry.All()
	if len(components) > 0 {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, c := range components {
			desc := component.Description{Name: c.Name()}
			if d, ok := c.(component.Describable); ok {
				desc = d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
			}
			fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(components)), desc.Name, desc.Details)
		}
		fmt.Fprintf(w, "\n")
	}

	health := registry.HealthAll(context.Background())
	if len(health) > 0 {
		fmt.Fprintf(w, "🏥 Health Check\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " - " + h.Message
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
		fmt.Fprintf(w, "\n")
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func variantIcon(variant string) string {
	switch variant {
	case di.VariantLive.String():
		return "✅"
	case di.VariantOverride.String():
		return "🔧"
	case di.VariantPreview.String(), di.VariantTest.String():
		return "🧪"
	default:
		return "•"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
