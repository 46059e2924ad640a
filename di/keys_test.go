package di_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/depkit/di"
	"github.com/kbukum/depkit/logger"
)

// liveOnlyKey has only a live default.
type liveOnlyKey struct{}

func (liveOnlyKey) LiveValue(context.Context) string { return "live" }

// previewKey has live and preview defaults.
type previewKey struct{}

func (previewKey) LiveValue(context.Context) string    { return "live" }
func (previewKey) PreviewValue(context.Context) string { return "preview" }

// fullKey has a default for every mode.
type fullKey struct{}

func (fullKey) LiveValue(context.Context) string    { return "live" }
func (fullKey) PreviewValue(context.Context) string { return "preview" }
func (fullKey) TestValue(context.Context) string    { return "test" }

// testOnlyKey exists only for tests.
type testOnlyKey struct {
	di.NoLiveValue[int]
}

func (testOnlyKey) TestValue(context.Context) int { return 7 }

// countingKey counts live computations and returns a fresh pointer each time.
type countingKey struct {
	calls *atomic.Int64
	delay time.Duration
}

type token struct{ n int64 }

func (k countingKey) LiveValue(context.Context) *token {
	time.Sleep(k.delay)
	return &token{n: k.calls.Add(1)}
}

func (k countingKey) TestValue(ctx context.Context) *token { return k.LiveValue(ctx) }

// readerKey governs an interface value.
type readerKey struct{}

func (readerKey) LiveValue(context.Context) io.Reader { return nil }
func (readerKey) TestValue(context.Context) io.Reader { return nil }

// loopKey resolves itself.
type loopKey struct{}

func (loopKey) LiveValue(ctx context.Context) int { return di.Resolve(ctx, loopKey{}) + 1 }

// dependentKey resolves fullKey from its factory.
type dependentKey struct{}

func (dependentKey) LiveValue(ctx context.Context) string {
	return "dep:" + di.Resolve(ctx, fullKey{})
}

func (k dependentKey) TestValue(ctx context.Context) string { return k.LiveValue(ctx) }

// closer records Close calls into a shared log.
type closer struct {
	name string
	log  *[]string
	err  error
}

func (c *closer) Close() error {
	*c.log = append(*c.log, c.name)
	return c.err
}

type firstCloserKey struct{ log *[]string }

func (k firstCloserKey) LiveValue(context.Context) *closer { return &closer{name: "first", log: k.log} }
func (k firstCloserKey) TestValue(ctx context.Context) *closer {
	return k.LiveValue(ctx)
}

type secondCloserKey struct{ log *[]string }

func (k secondCloserKey) LiveValue(context.Context) *closer {
	return &closer{name: "second", log: k.log, err: errors.New("boom")}
}
func (k secondCloserKey) TestValue(ctx context.Context) *closer { return k.LiveValue(ctx) }

// slowCloserKey blocks its factory until release is closed.
type slowCloserKey struct {
	started chan struct{}
	release chan struct{}
	log     *[]string
}

func (k slowCloserKey) LiveValue(context.Context) *closer {
	close(k.started)
	<-k.release
	return &closer{name: "slow", log: k.log}
}

// newRoot returns a context carrying a fresh root scope and the recorder
// receiving its diagnostics.
func newRoot(t *testing.T, mode di.Mode, opts ...di.Option) (context.Context, *di.Recorder) {
	t.Helper()
	rec := &di.Recorder{}
	opts = append([]di.Option{di.WithMode(mode), di.WithReporter(rec), di.WithLogger(logger.Nop())}, opts...)
	s := di.NewScope(opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s.Context(context.Background()), rec
}
