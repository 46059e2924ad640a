// Package testutil provides test scopes for code that resolves dependencies
// through package di.
//
// A test scope runs in test mode, fails the test on every diagnostic unless
// told otherwise, and is closed when the test ends.
//
// # Quick Start
//
//	func TestInvoice(t *testing.T) {
//	    ctx := testutil.NewScope(t, func(o *di.Overrides) {
//	        deps.Now.Set(o, deps.ConstantNow(t0))
//	    })
//	    inv := billing.NewInvoice(ctx)
//	    // ...
//	}
//
// Asserting on diagnostics instead of failing:
//
//	h := testutil.T(t).Lenient()
//	ctx := h.Scope()
//	deps.UUID.Get(ctx)()
//	h.ExpectDiagnostic(errors.ErrCodeUnimplemented)
package testutil
