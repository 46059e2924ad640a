// Package errors provides the structured error type shared by depkit packages.
//
// Codes split into three groups: diagnostics (reported, never returned),
// programming errors (raised as panics by the resolver) and validation
// errors (returned from configuration loading).
package errors
