package di

import (
	"context"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/depkit/errors"
	"github.com/kbukum/depkit/logger"
	"github.com/kbukum/depkit/observability"
)

// Resolve returns the value of key in the scope carried by ctx.
//
// The first access in a scope computes the value from the scope's override
// or the key's default for the scope mode, and later accesses return the
// memoized value. Concurrent first accesses compute it once.
func Resolve[V any](ctx context.Context, key Key[V]) V {
	return resolve(ctx, FromContext(ctx), key, "")
}

// Accessor is a named handle to a key, typically stored in a package-level
// variable:
//
//	var Clock = di.Property("deps.Clock", clockKey{})
//
//	now := deps.Clock.Get(ctx).Now()
//
// The name is used in diagnostics, so it should be the expression callers
// write to reach the accessor.
type Accessor[V any] struct {
	name string
	key  Key[V]
}

// Property returns an accessor for key named name.
func Property[V any](name string, key Key[V]) Accessor[V] {
	return Accessor[V]{name: name, key: key}
}

// Name returns the accessor name.
func (a Accessor[V]) Name() string { return a.name }

// Key returns the key the accessor resolves.
func (a Accessor[V]) Key() Key[V] { return a.key }

// Get resolves the accessor's key in the scope carried by ctx.
func (a Accessor[V]) Get(ctx context.Context) V {
	return resolve(ctx, FromContext(ctx), a.key, a.name)
}

// Set overrides the accessor's key in the scope being configured.
func (a Accessor[V]) Set(o *Overrides, value V) {
	Set(o, a.key, value)
}

// SetLazy overrides the accessor's key with a factory.
func (a Accessor[V]) SetLazy(o *Overrides, factory func(ctx context.Context) V) {
	SetLazy(o, a.key, factory)
}

func resolve[V any](ctx context.Context, s *Scope, key Key[V], accessor string) V {
	t := reflect.TypeOf(key)
	if t == nil {
		panic("di: nil dependency key")
	}
	if v, variant, source, ok := s.lookup(t); ok {
		s.metrics.RecordResolve(ctx, t.String(), variant.String(), source)
		return cast[V](v)
	}
	return cast[V](s.compute(ctx, describeKey(key), factoriesOf(key), accessor))
}

// compute produces the value for key in s and memoizes it unless the scope
// is closed.
func (s *Scope) compute(ctx context.Context, key keyInfo, f factories, accessor string) any {
	checkCycle(ctx, key)
	if s.closed.Load() {
		return s.transient(ctx, key, f, accessor)
	}

	sl, ov, mode := s.slotFor(key)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if v, variant, done := sl.load(); done {
		s.metrics.RecordResolve(ctx, key.name, variant.String(), observability.SourceCached)
		return v
	}
	// Close may have run since the first check; it waits on sl.mu, so a
	// value stored from here on is still closed by it.
	if s.closed.Load() {
		return s.transient(ctx, key, f, accessor)
	}
	if ov != nil && ov.factory == nil {
		s.metrics.RecordResolve(ctx, key.name, VariantOverride.String(), observability.SourceOverride)
		return ov.value
	}

	produce, variant, fallback := choose(ov, f, mode)
	if fallback {
		s.reportFallback(ctx, key, accessor)
	}
	v := s.invoke(ctx, key, produce, variant, mode)
	sl.store(v, variant)
	s.metrics.RecordResolve(ctx, key.name, variant.String(), observability.SourceComputed)
	return v
}

// transient computes key in a closed scope without memoizing it.
func (s *Scope) transient(ctx context.Context, key keyInfo, f factories, accessor string) any {
	if s.reporting() {
		s.report(ctx, scopeClosedDiagnostic(key, accessor, s.id.String()))
	}
	s.mu.Lock()
	ov, mode := s.overrides[key.typ], s.mode
	s.mu.Unlock()
	produce, variant, fallback := choose(ov, f, mode)
	if fallback {
		s.reportFallback(ctx, key, accessor)
	}
	v := s.invoke(ctx, key, produce, variant, mode)
	s.metrics.RecordResolve(ctx, key.name, variant.String(), observability.SourceTransient)
	return v
}

// reportFallback reports a live-derived default used in test mode. While the
// scope is being configured the report is only written to the debug log.
func (s *Scope) reportFallback(ctx context.Context, key keyInfo, accessor string) {
	if !s.setting.Load() {
		if s.reporting() {
			s.report(ctx, unoverriddenDiagnostic(key, accessor))
		}
		return
	}
	if s.log.Enabled(zerolog.DebugLevel) {
		s.log.Debug(errors.ReentrantConfiguration(key.name).Message, logger.Fields(
			logger.FieldCode, string(errors.ErrCodeReentrantConfiguration),
			logger.FieldKey, key.name,
			logger.FieldScopeID, s.id.String(),
		))
	}
}

// choose picks the producer for a key. fallback is true when a test-mode
// scope has nothing better than the live-derived preview default.
func choose(ov *override, f factories, mode Mode) (produce func(context.Context) any, variant Variant, fallback bool) {
	switch {
	case ov != nil && ov.factory != nil:
		return ov.factory, VariantOverride, false
	case ov != nil:
		value := ov.value
		return func(context.Context) any { return value }, VariantOverride, false
	case mode == ModeLive:
		return f.live, VariantLive, false
	case mode == ModePreview:
		produce, variant = f.previewDefault()
		return produce, variant, false
	case f.test != nil:
		return f.test, VariantTest, false
	default:
		produce, variant = f.previewDefault()
		return produce, variant, true
	}
}

// invoke runs a factory inside a span, with the key appended to the
// resolution path carried by the factory's context.
func (s *Scope) invoke(ctx context.Context, key keyInfo, produce func(context.Context) any, variant Variant, mode Mode) any {
	fctx := context.WithValue(ctx, pathCtxKey{}, &pathNode{key: key, parent: pathFrom(ctx)})
	fctx, span := observability.StartSpan(fctx, observability.SpanFactory, trace.WithAttributes(
		attribute.String(observability.AttrKey, key.name),
		attribute.String(observability.AttrValueType, key.valueName),
		attribute.String(observability.AttrVariant, variant.String()),
		attribute.String(observability.AttrMode, mode.String()),
		attribute.String(observability.AttrScopeID, s.id.String()),
	))
	defer func() {
		if r := recover(); r != nil {
			observability.RecordPanic(span, r)
			span.End()
			panic(r)
		}
	}()

	start := time.Now()
	v := produce(fctx)
	elapsed := time.Since(start)
	span.End()

	s.metrics.RecordFactory(ctx, key.name, variant.String(), elapsed)
	if s.log.Enabled(zerolog.DebugLevel) {
		s.log.Debug("dependency computed", logger.MergeWithDuration(logger.Fields(
			logger.FieldKey, key.name,
			logger.FieldVariant, variant.String(),
			logger.FieldMode, mode.String(),
			logger.FieldScopeID, s.id.String(),
		), elapsed))
	}
	return v
}

// pathNode is one factory invocation on the current resolution path.
type pathNode struct {
	key    keyInfo
	parent *pathNode
}

type pathCtxKey struct{}

func pathFrom(ctx context.Context) *pathNode {
	n, _ := ctx.Value(pathCtxKey{}).(*pathNode)
	return n
}

// checkCycle panics when key is already being computed further up the
// resolution path.
func checkCycle(ctx context.Context, key keyInfo) {
	head := pathFrom(ctx)
	for n := head; n != nil; n = n.parent {
		if n.key.typ != key.typ {
			continue
		}
		var names []string
		for m := head; m != nil; m = m.parent {
			names = append([]string{m.key.name}, names...)
		}
		panic(errors.CircularDependency(append(names, key.name)))
	}
}
