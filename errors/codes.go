package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resolution diagnostics
const (
	// ErrCodeMisconfiguredDefault indicates a key without a live value was
	// resolved outside of a test.
	ErrCodeMisconfiguredDefault ErrorCode = "MISCONFIGURED_DEFAULT"
	// ErrCodeUnoverriddenLiveInTest indicates a key without a test value fell
	// back to its live-derived default while running under test.
	ErrCodeUnoverriddenLiveInTest ErrorCode = "UNOVERRIDDEN_LIVE_IN_TEST"
	// ErrCodeReentrantConfiguration indicates a key was resolved while its
	// scope was still being configured.
	ErrCodeReentrantConfiguration ErrorCode = "REENTRANT_CONFIGURATION"
	// ErrCodeUnimplemented indicates an unimplemented test stand-in was used.
	ErrCodeUnimplemented ErrorCode = "UNIMPLEMENTED"
	// ErrCodeScopeClosed indicates a key was resolved from a closed scope.
	ErrCodeScopeClosed ErrorCode = "SCOPE_CLOSED"
)

// Programming errors
const (
	// ErrCodeCircularDependency indicates a factory resolved its own key.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeInvalidOverride indicates an override value does not match the
	// value type of its key.
	ErrCodeInvalidOverride ErrorCode = "INVALID_OVERRIDE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidConfig indicates the loaded configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var diagnosticCodes = map[ErrorCode]bool{
	ErrCodeMisconfiguredDefault:   true,
	ErrCodeUnoverriddenLiveInTest: true,
	ErrCodeReentrantConfiguration: true,
	ErrCodeUnimplemented:          true,
	ErrCodeScopeClosed:            true,
}

// IsDiagnosticCode returns true if the code is reported as a non-fatal
// diagnostic rather than returned or raised.
func IsDiagnosticCode(code ErrorCode) bool {
	return diagnosticCodes[code]
}
