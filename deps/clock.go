package deps

import (
	"context"
	"time"

	"github.com/kbukum/depkit/di"
)

// Clock returns the current time.
type Clock func() time.Time

type nowKey struct{}

func (nowKey) LiveValue(context.Context) Clock { return time.Now }

func (nowKey) TestValue(ctx context.Context) Clock {
	return func() time.Time {
		return di.Unimplemented(ctx, "deps.Now", time.Time{})
	}
}

// Now reads the current time. The wall clock when live.
var Now = di.Property("deps.Now", nowKey{})

// ConstantNow returns a clock that is stopped at t.
func ConstantNow(t time.Time) Clock {
	return func() time.Time { return t }
}
