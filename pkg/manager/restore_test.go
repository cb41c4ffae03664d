package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/stepexec"
)

// TestRestoreAllScenario encodes the startup-restoration case: two
// freshly created, healthy persisted sessions both come back through
// RestoreAll without the whole run aborting.
func TestRestoreAllScenario(t *testing.T) {
	m, _ := newTestManager(t, stepexec.NewReference())
	ctx := context.Background()

	a, err := m.CreateState(ctx, testProblem(), threeStepChain(), testStrategy(), nil)
	require.NoError(t, err)
	b, err := m.CreateState(ctx, testProblem(), threeStepChain(), testStrategy(), nil)
	require.NoError(t, err)

	metas, err := m.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, metas, 2)

	report, err := m.RestoreAll(ctx)
	require.NoError(t, err)
	assert.False(t, report.Aborted)
	assert.Equal(t, 2, report.SuccessfulRestorations)
	assert.Equal(t, 0, report.FailedRestorations)

	_ = a.ID
	_ = b.ID
}
