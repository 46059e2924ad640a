// Package di provides scoped, mode-aware dependency resolution.
//
// A dependency is declared by a key type whose methods supply the default
// value for each mode. Code resolves a key against the scope carried by its
// context; the first access computes and memoizes the value in that scope.
//
// # Declaring
//
//	type clockKey struct{}
//
//	func (clockKey) LiveValue(context.Context) Clock { return systemClock{} }
//	func (clockKey) TestValue(context.Context) Clock { return newFakeClock() }
//
//	var Clock = di.Property("deps.Clock", clockKey{})
//
// # Resolving
//
//	clock := deps.Clock.Get(ctx)          // property style
//	clock := di.Resolve(ctx, clockKey{})  // type style
//
// # Overriding
//
//	ctx = di.With(ctx, func(o *di.Overrides) {
//		deps.Clock.Set(o, fixedClock(t0))
//	})
//
// A child scope sees its parent's overrides and adds its own; nothing it
// computes is visible to the parent.
//
// # Modes and diagnostics
//
// Each scope has a mode: live, preview or test. Preview falls back to the
// live default and test falls back to preview. When a test-mode scope falls
// back for a key with no TestValue, a UNOVERRIDDEN_LIVE_IN_TEST diagnostic is
// sent to the scope's Reporter, unless the scope is still being configured.
// Builds tagged `release` never report diagnostics.
package di
