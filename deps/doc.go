// Package deps declares dependencies most programs share: identifier
// generation, the clock, logging and telemetry.
//
// Live values use the real implementations. Test values either do nothing
// (Logger, Tracer, Meter) or are unimplemented stand-ins that report a
// diagnostic when called (UUID, Now), so tests must say what they expect:
//
//	ctx := testutil.NewScope(t, func(o *di.Overrides) {
//	    deps.UUID.Set(o, deps.IncrementingUUID())
//	    deps.Now.Set(o, deps.ConstantNow(time.Unix(1_700_000_000, 0)))
//	})
package deps
