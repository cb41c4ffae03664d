package recovery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/checkpoint"
	"github.com/reasonchain/core/pkg/codec"
	"github.com/reasonchain/core/pkg/recovery"
	"github.com/reasonchain/core/pkg/types"
)

func sampleState(id string, currentStep int, totalSteps int) *types.ReasoningState {
	steps := make([]*types.Step, totalSteps)
	for i := range steps {
		status := types.StepPending
		if i < currentStep {
			status = types.StepCompleted
		}
		steps[i] = &types.Step{ID: "s" + string(rune('0'+i)), Index: i, Description: "d", Status: status, Confidence: 0.5}
	}
	return &types.ReasoningState{
		ID: id, CurrentStep: currentStep, TotalSteps: totalSteps, Steps: steps,
		Problem:  types.Problem{Description: "d", GoalState: "g", Complexity: types.ComplexitySimple},
		Strategy: types.Strategy{Name: types.StrategyTopDown, Type: types.StrategyTypeSequential},
	}
}

// Scenario 5: checkpoint rollback recovery after the stored blob is
// corrupted, with three prior checkpoints present.
func TestCheckpointRollbackRecoveryScenario(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	cp := checkpoint.New(blobs, 10)
	c := codec.New(codec.DefaultMigrations()...)

	sessionID := "reasoning-abc-00000001"
	state := sampleState(sessionID, 3, 5)

	for i, stepIdx := range []int{1, 2, 3} {
		snap := types.CloneSnapshot(types.Snapshot{CurrentStep: stepIdx, Steps: state.Steps[:stepIdx]})
		require.NoError(t, cp.Append(sessionID, &types.Checkpoint{
			ID: "ckpt-" + string(rune('0'+i)), Timestamp: int64(100 * (i + 1)), StepIndex: stepIdx, Snapshot: snap,
		}))
	}

	data, err := c.Encode(state)
	require.NoError(t, err)
	blobKey := "active/" + sessionID + "/reasoning-state.json"
	require.NoError(t, blobs.Put(blobKey, data))
	// simulate corruption: truncate the stored blob
	require.NoError(t, blobs.Put(blobKey, data[:5]))

	planner := recovery.New(recovery.DefaultConfig(), recovery.NewDefaultStrategies(c)...)
	rctx := recovery.Context{SessionID: sessionID, Blobs: blobs, Checkpoints: cp, BlobKey: blobKey, LastKnown: state}

	result := planner.Recover(context.Background(), rctx)
	require.True(t, result.OK)
	assert.Equal(t, recovery.RecoveryCheckpointRollback, result.RecoveryType)
	assert.Equal(t, 3, result.State.CurrentStep)
	assert.Len(t, result.State.Steps, 3)
}

func TestMinimalStrategyAlwaysSucceeds(t *testing.T) {
	c := codec.New(codec.DefaultMigrations()...)
	planner := recovery.New(recovery.DefaultConfig(), recovery.NewDefaultStrategies(c)...)
	rctx := recovery.Context{SessionID: "reasoning-none-00000001"}

	result := planner.Recover(context.Background(), rctx)
	require.True(t, result.OK)
	assert.Equal(t, recovery.RecoveryMinimal, result.RecoveryType)
	assert.Equal(t, "reasoning-none-00000001", result.State.ID)
}

func TestFullStrategySucceedsWhenBlobReadable(t *testing.T) {
	blobs := blobstore.NewMemoryStore()
	c := codec.New(codec.DefaultMigrations()...)
	state := sampleState("reasoning-full-00000001", 1, 1)
	data, err := c.Encode(state)
	require.NoError(t, err)
	blobKey := "active/x/reasoning-state.json"
	require.NoError(t, blobs.Put(blobKey, data))

	planner := recovery.New(recovery.DefaultConfig(), recovery.NewDefaultStrategies(c)...)
	rctx := recovery.Context{SessionID: state.ID, Blobs: blobs, BlobKey: blobKey}

	result := planner.Recover(context.Background(), rctx)
	require.True(t, result.OK)
	assert.Equal(t, recovery.RecoveryFull, result.RecoveryType)
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
}
