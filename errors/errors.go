package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Diagnostic marks errors that are reported instead of returned.
	Diagnostic bool `json:"diagnostic"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches another *AppError by code so errors.Is works against the
// constructors below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError; diagnostic codes are flagged automatically.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Diagnostic: IsDiagnosticCode(code),
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// --- Diagnostic constructors ---

// MisconfiguredDefault reports a test-only key resolved outside of tests.
func MisconfiguredDefault(key, mode string) *AppError {
	return &AppError{
		Code:       ErrCodeMisconfiguredDefault,
		Message:    fmt.Sprintf("%s has no live implementation but was resolved in %s mode", key, mode),
		Diagnostic: true,
		Details:    map[string]any{"key": key, "mode": mode},
	}
}

// UnoverriddenLiveInTest reports a live-derived default used under test.
func UnoverriddenLiveInTest(key, valueType string) *AppError {
	details := map[string]any{"key": key}
	if valueType != "" {
		details["value_type"] = valueType
	}
	return &AppError{
		Code:       ErrCodeUnoverriddenLiveInTest,
		Message:    fmt.Sprintf("%s has no test implementation but was accessed from a test context", key),
		Diagnostic: true,
		Details:    details,
	}
}

// ReentrantConfiguration describes a resolution made while a scope was being
// configured. It is never reported, only logged at debug level.
func ReentrantConfiguration(key string) *AppError {
	return &AppError{
		Code:       ErrCodeReentrantConfiguration,
		Message:    fmt.Sprintf("%s was resolved while its scope was being configured", key),
		Diagnostic: true,
		Details:    map[string]any{"key": key},
	}
}

// Unimplemented reports an unimplemented test stand-in being used.
func Unimplemented(name string) *AppError {
	return &AppError{
		Code:       ErrCodeUnimplemented,
		Message:    fmt.Sprintf("unimplemented: %s", name),
		Diagnostic: true,
		Details:    map[string]any{"name": name},
	}
}

// ScopeClosed reports a resolution attempted on a closed scope.
func ScopeClosed(scopeID, key string) *AppError {
	return &AppError{
		Code:       ErrCodeScopeClosed,
		Message:    fmt.Sprintf("%s was resolved from closed scope %s", key, scopeID),
		Diagnostic: true,
		Details:    map[string]any{"scope_id": scopeID, "key": key},
	}
}

// --- Programming errors ---

// CircularDependency describes a factory that resolved its own key.
func CircularDependency(path []string) *AppError {
	return &AppError{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("circular dependency: %s", strings.Join(path, " -> ")),
		Details: map[string]any{"path": path},
	}
}

// InvalidOverride describes an override whose value has the wrong type.
func InvalidOverride(key, want, got string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidOverride,
		Message: fmt.Sprintf("override for %s must be %s, got %s", key, want, got),
		Details: map[string]any{"key": key, "want": want, "got": got},
	}
}

// --- Validation errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// InvalidConfig wraps a configuration failure for the named section.
func InvalidConfig(section string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid %s configuration", section),
		Details: map[string]any{"section": section}, Cause: cause,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}
