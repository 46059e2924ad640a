//go:build !release

package di

// diagnosticsEnabled is false in builds tagged release, which removes every
// diagnostic report and call-site capture.
const diagnosticsEnabled = true
