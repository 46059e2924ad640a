package di_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbukum/depkit/di"
)

// Runs with and without the release tag.
func TestDiagnostics_FollowBuildTag(t *testing.T) {
	ctx, rec := newRoot(t, di.ModeTest)

	assert.Equal(t, "live", di.Resolve(ctx, liveOnlyKey{}))
	assert.Equal(t, 0, di.Unimplemented(ctx, "deps.Counter", 0))

	if di.DiagnosticsCompiled() {
		assert.True(t, di.ShouldReportUnimplemented(ctx))
		assert.Len(t, rec.Diagnostics(), 2)
		return
	}
	assert.False(t, di.ShouldReportUnimplemented(ctx))
	assert.Empty(t, rec.Diagnostics())
}
