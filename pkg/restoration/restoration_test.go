package restoration_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/restoration"
	"github.com/reasonchain/core/pkg/types"
)

func healthyState(id string) *types.ReasoningState {
	return &types.ReasoningState{
		ID:      id,
		Problem: types.Problem{Description: "d", GoalState: "g", Complexity: types.ComplexitySimple},
		Strategy: types.Strategy{Name: types.StrategyTopDown, Type: types.StrategyTypeSequential},
		Steps:   []*types.Step{{ID: "s0", Index: 0, Description: "d", Confidence: 0.5}},
		TotalSteps: 1,
	}
}

// Scenario 6: six sessions seeded across three activity buckets restore
// in three ordered stages of two sessions each.
func TestRestorationPrioritizationScenario(t *testing.T) {
	now := time.Now()
	candidates := []restoration.Candidate{
		{SessionID: "high-1", LastActivity: now.Add(-30 * time.Minute), PreCheckHealth: 100, Complexity: 60, Dependencies: 60, UserPriority: 60},
		{SessionID: "high-2", LastActivity: now.Add(-45 * time.Minute), PreCheckHealth: 100, Complexity: 60, Dependencies: 60, UserPriority: 60},
		{SessionID: "medium-1", LastActivity: now.Add(-12 * time.Hour), PreCheckHealth: 80, Complexity: 60, Dependencies: 60, UserPriority: 60},
		{SessionID: "medium-2", LastActivity: now.Add(-20 * time.Hour), PreCheckHealth: 80, Complexity: 60, Dependencies: 60, UserPriority: 60},
		{SessionID: "low-1", LastActivity: now.Add(-240 * time.Hour), PreCheckHealth: 60, Complexity: 60, Dependencies: 60, UserPriority: 60},
		{SessionID: "low-2", LastActivity: now.Add(-300 * time.Hour), PreCheckHealth: 60, Complexity: 60, Dependencies: 60, UserPriority: 60},
	}

	load := func(ctx context.Context, sessionID string) (*types.ReasoningState, error) {
		return healthyState(sessionID), nil
	}

	p := restoration.New(restoration.DefaultConfig(), load, nil, zerolog.Nop())
	report := p.Restore(context.Background(), candidates)

	require.Len(t, report.Stages, 3)
	assert.Equal(t, restoration.StageHigh, report.Stages[0].Stage)
	assert.Equal(t, restoration.StageMedium, report.Stages[1].Stage)
	assert.Equal(t, restoration.StageLow, report.Stages[2].Stage)
	assert.Len(t, report.Stages[0].SessionIDs, 2)
	assert.Len(t, report.Stages[1].SessionIDs, 2)
	assert.Len(t, report.Stages[2].SessionIDs, 2)
	assert.False(t, report.Aborted)
	assert.Equal(t, 6, report.SuccessfulRestorations)
}

func TestAbortsOnExcessiveFailureRatio(t *testing.T) {
	now := time.Now()
	var candidates []restoration.Candidate
	for i := 0; i < 10; i++ {
		candidates = append(candidates, restoration.Candidate{
			SessionID: "high-" + string(rune('a'+i)), LastActivity: now, PreCheckHealth: 100,
		})
	}

	load := func(ctx context.Context, sessionID string) (*types.ReasoningState, error) {
		return nil, assertError{}
	}

	p := restoration.New(restoration.DefaultConfig(), load, nil, zerolog.Nop())
	report := p.Restore(context.Background(), candidates)
	assert.True(t, report.Aborted)
}

type assertError struct{}

func (assertError) Error() string { return "load failed" }
