package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/depkit/logger"
	"github.com/kbukum/depkit/observability"
)

// Scope holds the overrides and memoized values visible to code running in
// it. Scopes form a tree: a child starts with a copy of its parent's
// overrides and mode, and anything it computes stays in the child.
//
// A scope is safe for concurrent use once configured.
type Scope struct {
	id     uuid.UUID
	parent *Scope

	reporter    Reporter
	log         *logger.Logger
	metrics     *observability.ResolutionMetrics
	diagnostics bool

	setting atomic.Bool
	closed  atomic.Bool

	mu        sync.Mutex
	mode      Mode
	overrides map[reflect.Type]*override
	slots     map[reflect.Type]*slot
	order     []*slot
}

// override is a value or lazy factory installed on a scope. Children share
// the same *override with their parent until they replace it.
type override struct {
	key     keyInfo
	value   any
	factory func(context.Context) any
}

// slot memoizes one key in one scope. Its mutex serializes the first
// computation so concurrent callers observe a single factory invocation.
// value and variant are written once, before done is set.
type slot struct {
	mu      sync.Mutex
	key     keyInfo
	done    atomic.Bool
	value   any
	variant Variant
}

// Option configures a root scope.
type Option func(*Scope)

// WithMode sets the root scope mode. Without it DetectMode is used.
func WithMode(m Mode) Option {
	return func(s *Scope) { s.mode = m }
}

// WithReporter sets the diagnostic sink. A nil reporter silences diagnostics.
func WithReporter(r Reporter) Option {
	return func(s *Scope) {
		if r == nil {
			r = SilentReporter()
		}
		s.reporter = r
	}
}

// WithLogger sets the logger used for scope lifecycle and factory events.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scope) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the resolution instruments. Nil disables metrics.
func WithMetrics(m *observability.ResolutionMetrics) Option {
	return func(s *Scope) { s.metrics = m }
}

// WithDiagnostics turns diagnostic reporting on or off at runtime. Builds
// tagged `release` never report regardless of this setting.
func WithDiagnostics(enabled bool) Option {
	return func(s *Scope) { s.diagnostics = enabled }
}

// NewScope creates a root scope.
func NewScope(opts ...Option) *Scope {
	s := &Scope{
		id:          uuid.New(),
		mode:        DetectMode(),
		diagnostics: true,
		overrides:   make(map[reflect.Type]*override),
		slots:       make(map[reflect.Type]*slot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("di")
	}
	if s.reporter == nil {
		s.reporter = LogReporter(s.log)
	}
	s.metrics.ScopeOpened(context.Background(), s.mode.String())
	return s
}

var defaultScope = sync.OnceValue(func() *Scope {
	metrics, err := observability.NewResolutionMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		logger.Warn("di: resolution metrics unavailable", logger.ErrorFields("new_resolution_metrics", err))
	}
	return NewScope(WithMetrics(metrics))
})

// Default returns the process root scope, used when a context carries no
// scope. It is created on first use.
func Default() *Scope {
	return defaultScope()
}

type scopeCtxKey struct{}

// Context returns a copy of ctx carrying s.
func (s *Scope) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeCtxKey{}, s)
}

// FromContext returns the scope carried by ctx, or Default.
func FromContext(ctx context.Context) *Scope {
	if ctx != nil {
		if s, ok := ctx.Value(scopeCtxKey{}).(*Scope); ok {
			return s
		}
	}
	return Default()
}

// ModeFrom returns the mode of the scope carried by ctx.
func ModeFrom(ctx context.Context) Mode {
	return FromContext(ctx).Mode()
}

// Configuring reports whether the scope carried by ctx is still being
// configured.
func Configuring(ctx context.Context) bool {
	return FromContext(ctx).setting.Load()
}

// ID returns the scope identifier.
func (s *Scope) ID() uuid.UUID { return s.id }

// Parent returns the enclosing scope, or nil for a root.
func (s *Scope) Parent() *Scope { return s.parent }

// Mode returns the scope mode.
func (s *Scope) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool { return s.closed.Load() }

// child creates an unconfigured child scope. It is not visible to anyone
// until configuration finishes.
func (s *Scope) child() *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Scope{
		id:          uuid.New(),
		parent:      s,
		reporter:    s.reporter,
		log:         s.log,
		metrics:     s.metrics,
		diagnostics: s.diagnostics,
		mode:        s.mode,
		overrides:   make(map[reflect.Type]*override, len(s.overrides)),
		slots:       make(map[reflect.Type]*slot),
	}
	for t, ov := range s.overrides {
		c.overrides[t] = ov
	}
	return c
}

// lookup returns a memoized or overridden value without computing anything.
func (s *Scope) lookup(t reflect.Type) (value any, variant Variant, source string, ok bool) {
	s.mu.Lock()
	ov := s.overrides[t]
	if ov != nil && ov.factory == nil {
		s.mu.Unlock()
		return ov.value, VariantOverride, observability.SourceOverride, true
	}
	sl := s.slots[t]
	mode := s.mode
	s.mu.Unlock()

	if sl != nil {
		if v, vr, done := sl.load(); done {
			return v, vr, observability.SourceCached, true
		}
	}
	// Ancestors in the same mode that see the same override share their
	// memoized values read-only.
	for p := s.parent; p != nil; p = p.parent {
		p.mu.Lock()
		same := p.mode == mode && p.overrides[t] == ov && !p.closed.Load()
		psl := p.slots[t]
		p.mu.Unlock()
		if !same {
			break
		}
		if psl != nil {
			if v, vr, done := psl.load(); done {
				return v, vr, observability.SourceInherited, true
			}
		}
	}
	return nil, 0, "", false
}

// slotFor returns the scope's slot for key, creating it when missing, and
// the lazy override governing the key, if any.
func (s *Scope) slotFor(key keyInfo) (*slot, *override, Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key.typ]
	if !ok {
		sl = &slot{key: key}
		s.slots[key.typ] = sl
		s.order = append(s.order, sl)
	}
	return sl, s.overrides[key.typ], s.mode
}

// load never blocks, so a lookup made while the slot is being computed
// falls through to compute, where cycles are detected.
func (sl *slot) load() (any, Variant, bool) {
	if !sl.done.Load() {
		return nil, 0, false
	}
	return sl.value, sl.variant, true
}

func (sl *slot) store(v any, variant Variant) {
	sl.value, sl.variant = v, variant
	sl.done.Store(true)
}

// setOverride installs an override, discarding any value the scope computed
// for the key during configuration.
func (s *Scope) setOverride(ov *override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[ov.key.typ] = ov
	delete(s.slots, ov.key.typ)
}

func (s *Scope) setMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == m {
		return
	}
	s.mode = m
	// Discarded slots stay in order so Close still tears down their values.
	s.slots = make(map[reflect.Type]*slot)
}

// Entry describes one value visible in a scope.
type Entry struct {
	Key       string
	ValueType string
	Variant   Variant
	Value     any
}

// Snapshot lists the overrides and memoized values held by s, sorted by key.
// Values inherited from ancestors are not included.
func (s *Scope) Snapshot() []Entry {
	s.mu.Lock()
	overrides := make([]*override, 0, len(s.overrides))
	for _, ov := range s.overrides {
		overrides = append(overrides, ov)
	}
	slots := make([]*slot, 0, len(s.slots))
	for _, sl := range s.slots {
		slots = append(slots, sl)
	}
	s.mu.Unlock()

	seen := make(map[reflect.Type]bool, len(slots))
	entries := make([]Entry, 0, len(overrides)+len(slots))
	for _, sl := range slots {
		v, vr, done := sl.load()
		if !done {
			continue
		}
		seen[sl.key.typ] = true
		entries = append(entries, Entry{Key: sl.key.name, ValueType: sl.key.valueName, Variant: vr, Value: v})
	}
	for _, ov := range overrides {
		if ov.factory != nil || seen[ov.key.typ] {
			continue
		}
		entries = append(entries, Entry{Key: ov.key.name, ValueType: ov.key.valueName, Variant: VariantOverride, Value: ov.value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Close marks the scope closed and closes every io.Closer value it computed,
// most recent first, including values computed during configuration and
// later discarded. Values supplied directly as overrides belong to the
// caller and are left open. Close waits for computations in progress and
// must not be called from a factory of the same scope. It is idempotent.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	order := s.order
	mode := s.mode
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		// Wait for an in-flight computation so its value is not leaked.
		order[i].mu.Lock()
		v, _, done := order[i].load()
		order[i].mu.Unlock()
		if !done {
			continue
		}
		c, ok := v.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			s.log.Warn("failed to close dependency", logger.Fields(
				logger.FieldKey, order[i].key.name,
				logger.FieldScopeID, s.id.String(),
				logger.FieldError, err.Error(),
			))
			errs = append(errs, fmt.Errorf("close %s: %w", order[i].key.name, err))
		}
	}
	s.metrics.ScopeClosed(context.Background(), mode.String())
	s.log.Debug("scope closed", logger.Fields(logger.FieldScopeID, s.id.String()))
	return stderrors.Join(errs...)
}
