package conflict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/conflict"
	"github.com/reasonchain/core/pkg/types"
)

func baseState() *types.ReasoningState {
	return &types.ReasoningState{
		ID:          "s1",
		CurrentStep: 1,
		TotalSteps:  3,
		Steps:       []*types.Step{{ID: "s0", Index: 0}, {ID: "s1", Index: 1}, {ID: "s2", Index: 2}},
		Problem:     types.Problem{Constraints: []string{"x"}},
	}
}

// Scenario 4: merge of non-overlapping additive tag changes.
func TestMergeUnionsConstraints(t *testing.T) {
	base := baseState()
	a := base.Clone()
	a.Problem.Constraints = []string{"x", "y"}
	a.LastModified = 100
	b := base.Clone()
	b.Problem.Constraints = []string{"x", "z"}
	b.LastModified = 200

	r := conflict.New(conflict.DefaultConfig())
	c := r.Detect("s1", "A", "B", a, b, base)
	require.NotNil(t, c)

	result := r.Resolve(c, types.AccessWrite, types.AccessWrite)
	require.Equal(t, types.ResolutionMerge, result.Strategy)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, result.ResolvedState.Problem.Constraints)
	assert.GreaterOrEqual(t, result.Confidence, 0.8)
}

func TestCriticalFieldConflictForcesManualIntervention(t *testing.T) {
	base := baseState()
	a := base.Clone()
	a.CurrentStep = 2
	b := base.Clone()
	b.CurrentStep = 3

	r := conflict.New(conflict.DefaultConfig())
	c := r.Detect("s1", "A", "B", a, b, base)
	require.NotNil(t, c)
	assert.Equal(t, types.SeverityCritical, c.Severity)

	result := r.Resolve(c, types.AccessWrite, types.AccessWrite)
	assert.Equal(t, types.ResolutionManualIntervention, result.Strategy)
	assert.Equal(t, 0.0, result.Confidence)
	assert.True(t, result.ReviewRequired)
}

func TestNoConflictWhenStatesIdentical(t *testing.T) {
	base := baseState()
	a := base.Clone()
	b := base.Clone()

	r := conflict.New(conflict.DefaultConfig())
	c := r.Detect("s1", "A", "B", a, b, base)
	assert.Nil(t, c)
}

func TestStatsAccumulate(t *testing.T) {
	base := baseState()
	a := base.Clone()
	a.CurrentStep = 2
	b := base.Clone()
	b.CurrentStep = 3

	r := conflict.New(conflict.DefaultConfig())
	c := r.Detect("s1", "A", "B", a, b, base)
	require.NotNil(t, c)
	r.Resolve(c, types.AccessWrite, types.AccessWrite)

	stats := r.Stats()
	assert.Equal(t, 1, stats.ResolutionsByStrategy[types.ResolutionManualIntervention])
}
