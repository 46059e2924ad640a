// Package bootstrap builds a process's root dependency scope from
// configuration and runs the application lifecycle around it.
//
// # Quick Start
//
//	var cfg MyConfig
//	if err := config.LoadConfig("billing", &cfg); err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    id := deps.UUID.Get(ctx)()
//	    // ...
//	})
//
// The root scope mode, diagnostic reporter and diagnostics switch come from
// the dependencies section of the config. When telemetry is enabled, OTLP
// tracing and metrics exporters are started before the task and stopped
// after the root scope is closed.
package bootstrap
