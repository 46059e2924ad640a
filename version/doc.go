// Package version reports build information for the running binary.
//
// Version, commit and build time can be set at link time:
//
//	go build -tags release -ldflags "-X github.com/kbukum/depkit/version.Version=1.0.0"
//
// Otherwise the module build info recorded by the Go toolchain is used.
package version
