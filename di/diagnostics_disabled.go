//go:build release

package di

const diagnosticsEnabled = false
