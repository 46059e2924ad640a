package di

import (
	"context"
	stderrors "errors"

	"github.com/rs/zerolog"

	"github.com/kbukum/depkit/logger"
)

// Overrides configures a child scope while it is being built. It is only
// valid inside the configure function passed to With or WithScope.
type Overrides struct {
	scope *Scope
	ctx   context.Context
}

// Context returns a context that resolves through the scope being
// configured. Resolutions made with it suppress the unoverridden-in-test
// diagnostic and are not memoized when they fall back to a live-derived
// default.
func (o *Overrides) Context() context.Context { return o.ctx }

// Mode returns the mode of the scope being configured.
func (o *Overrides) Mode() Mode { return o.scope.Mode() }

// SetMode changes the mode of the scope being configured. Values memoized
// earlier in the same configuration are discarded.
func (o *Overrides) SetMode(m Mode) {
	o.check()
	o.scope.setMode(m)
}

func (o *Overrides) check() {
	if o == nil || !o.scope.setting.Load() {
		panic("di: Overrides used outside of its configure function")
	}
}

// Set overrides key with value in the scope being configured.
func Set[V any](o *Overrides, key Key[V], value V) {
	o.check()
	o.scope.setOverride(&override{key: describeKey(key), value: value})
}

// SetLazy overrides key with a factory evaluated on first access and then
// memoized in the scope that resolves it.
func SetLazy[V any](o *Overrides, key Key[V], factory func(ctx context.Context) V) {
	o.check()
	o.scope.setOverride(&override{
		key:     describeKey(key),
		factory: func(ctx context.Context) any { return factory(ctx) },
	})
}

// Get resolves key through the scope being configured, so overrides set
// earlier in the same configure function are visible.
func Get[V any](o *Overrides, key Key[V]) V {
	o.check()
	return resolve(o.ctx, o.scope, key, "")
}

// With returns a context carrying a child of the scope in ctx, configured by
// the given functions in order. The parent scope is never modified.
//
// The child counts as an open scope in the di.scope.active metric until it
// is closed, so callers own it and must call Close on it, typically with
// defer di.FromContext(cctx).Close(). WithScope does this for them.
func With(ctx context.Context, configure ...func(o *Overrides)) context.Context {
	child := FromContext(ctx).child()
	cctx := child.Context(ctx)

	child.setting.Store(true)
	func() {
		defer child.setting.Store(false)
		o := &Overrides{scope: child, ctx: cctx}
		for _, fn := range configure {
			if fn != nil {
				fn(o)
			}
		}
	}()

	child.metrics.ScopeOpened(ctx, child.Mode().String())
	if child.log.Enabled(zerolog.DebugLevel) {
		child.log.Debug("scope opened", logger.Fields(
			logger.FieldScopeID, child.id.String(),
			"parent_id", child.parent.id.String(),
			logger.FieldMode, child.Mode().String(),
		))
	}
	return cctx
}

// WithScope runs op in a configured child scope and closes the scope when op
// returns. Close errors are joined with op's error.
func WithScope(ctx context.Context, configure func(o *Overrides), op func(ctx context.Context) error) (err error) {
	cctx := With(ctx, configure)
	defer func() {
		if cerr := FromContext(cctx).Close(); cerr != nil {
			err = stderrors.Join(err, cerr)
		}
	}()
	return op(cctx)
}
