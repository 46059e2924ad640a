package di

import (
	"context"

	"github.com/kbukum/depkit/errors"
)

// ShouldReportUnimplemented reports whether an unimplemented test stand-in
// used with ctx should raise a diagnostic: the scope is in test mode, is not
// being configured and has diagnostics enabled.
func ShouldReportUnimplemented(ctx context.Context) bool {
	if !diagnosticsEnabled {
		return false
	}
	s := FromContext(ctx)
	return s.reporting() && !s.setting.Load() && s.Mode() == ModeTest
}

// ReportUnimplemented reports that the stand-in name was used, when
// ShouldReportUnimplemented allows it.
func ReportUnimplemented(ctx context.Context, name string) {
	if !ShouldReportUnimplemented(ctx) {
		return
	}
	FromContext(ctx).report(ctx, Diagnostic{
		Kind:     errors.ErrCodeUnimplemented,
		Key:      name,
		Location: callSite(),
		Message:  errors.Unimplemented(name).Message,
	})
}

// Unimplemented reports the stand-in name and returns placeholder. Test
// defaults use it for endpoints a test is expected to override:
//
//	func (uuidKey) TestValue(ctx context.Context) func() uuid.UUID {
//		return func() uuid.UUID { return di.Unimplemented(ctx, "deps.UUID", uuid.Nil) }
//	}
func Unimplemented[V any](ctx context.Context, name string, placeholder V) V {
	ReportUnimplemented(ctx, name)
	return placeholder
}
