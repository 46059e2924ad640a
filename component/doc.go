// Package component manages process infrastructure that must outlive every
// dependency scope, such as telemetry exporters.
//
// Components are started in registration order before the application's
// root scope is used and stopped in reverse order after it is closed.
package component
