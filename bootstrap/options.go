package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	reporter        di.Reporter
	scopeOptions    []di.Option
	summaryOut      io.Writer
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithReporter replaces the diagnostic reporter selected by
// dependencies.reporter.
func WithReporter(r di.Reporter) Option {
	return func(o *appOptions) {
		o.reporter = r
	}
}

// WithScopeOptions appends options applied to the root scope after the ones
// derived from configuration.
func WithScopeOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.scopeOptions = append(o.scopeOptions, opts...)
	}
}

// WithSummaryOutput sets where the startup summary is written. Defaults to
// stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryOut = w
	}
}
