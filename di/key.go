package di

import (
	"context"
	"reflect"
)

// Key declares a dependency. The key's dynamic Go type is its identity and V
// is the value type it governs. LiveValue produces the production value and
// is also the fallback for the preview and test defaults.
//
// Keys are usually empty structs:
//
//	type clockKey struct{}
//
//	func (clockKey) LiveValue(context.Context) Clock    { return systemClock{} }
//	func (clockKey) TestValue(context.Context) Clock    { return &fakeClock{} }
type Key[V any] interface {
	LiveValue(ctx context.Context) V
}

// PreviewKey is implemented by keys with a dedicated preview default.
// Without it, preview resolves to LiveValue.
type PreviewKey[V any] interface {
	PreviewValue(ctx context.Context) V
}

// TestKey is implemented by keys with a dedicated test default. Without it,
// test resolves to the preview default and reports a diagnostic.
type TestKey[V any] interface {
	TestValue(ctx context.Context) V
}

// NoLiveValue can be embedded by keys that only exist for tests. Resolving
// such a key outside of test mode reports MISCONFIGURED_DEFAULT and yields
// the zero value.
type NoLiveValue[V any] struct{}

// LiveValue reports the misconfiguration and returns the zero V.
func (NoLiveValue[V]) LiveValue(ctx context.Context) V {
	reportMisconfigured(ctx, reflect.TypeFor[V]())
	var zero V
	return zero
}

// keyInfo describes a key for caching and diagnostics.
type keyInfo struct {
	typ       reflect.Type
	name      string
	valueName string
}

func describeKey[V any](key Key[V]) keyInfo {
	t := reflect.TypeOf(key)
	if t == nil {
		panic("di: nil dependency key")
	}
	info := keyInfo{typ: t, name: t.String()}
	if vn := reflect.TypeFor[V]().String(); vn != info.name {
		info.valueName = vn
	}
	return info
}

// factories adapts a typed key into the untyped producers the scope stores.
type factories struct {
	live    func(context.Context) any
	preview func(context.Context) any
	test    func(context.Context) any
}

func factoriesOf[V any](key Key[V]) factories {
	f := factories{
		live: func(ctx context.Context) any { return key.LiveValue(ctx) },
	}
	if pk, ok := key.(PreviewKey[V]); ok {
		f.preview = func(ctx context.Context) any { return pk.PreviewValue(ctx) }
	}
	if tk, ok := key.(TestKey[V]); ok {
		f.test = func(ctx context.Context) any { return tk.TestValue(ctx) }
	}
	return f
}

// previewDefault returns the preview factory and the variant it produces.
func (f factories) previewDefault() (func(context.Context) any, Variant) {
	if f.preview != nil {
		return f.preview, VariantPreview
	}
	return f.live, VariantLive
}

func cast[V any](v any) V {
	typed, _ := v.(V)
	return typed
}
