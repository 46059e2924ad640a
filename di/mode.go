package di

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// ModeEnv names the environment variable that forces the root scope mode.
const ModeEnv = "DEPKIT_MODE"

// Mode is the execution environment a scope resolves defaults for.
type Mode int

const (
	// ModeLive resolves production defaults.
	ModeLive Mode = iota
	// ModePreview resolves defaults for interactive or sandboxed runs.
	ModePreview
	// ModeTest resolves defaults for automated tests.
	ModeTest
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModePreview:
		return "preview"
	case ModeTest:
		return "test"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "live", "preview" or "test" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live":
		return ModeLive, nil
	case "preview":
		return ModePreview, nil
	case "test":
		return ModeTest, nil
	default:
		return ModeLive, fmt.Errorf("di: unknown mode %q", s)
	}
}

// DetectMode returns the mode for a root scope created without an explicit
// mode: DEPKIT_MODE when set and valid, test when running under `go test`,
// live otherwise.
func DetectMode() Mode {
	if v := os.Getenv(ModeEnv); v != "" {
		if m, err := ParseMode(v); err == nil {
			return m
		}
	}
	if testing.Testing() {
		return ModeTest
	}
	return ModeLive
}

// Variant identifies which factory produced a memoized value.
type Variant int

const (
	VariantLive Variant = iota
	VariantPreview
	VariantTest
	// VariantOverride marks values supplied by a scope override.
	VariantOverride
)

// String returns the lowercase variant name.
func (v Variant) String() string {
	switch v {
	case VariantLive:
		return "live"
	case VariantPreview:
		return "preview"
	case VariantTest:
		return "test"
	case VariantOverride:
		return "override"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}
