package checkpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/checkpoint"
	"github.com/reasonchain/core/pkg/types"
)

func newStore(retention int) *checkpoint.Store {
	return checkpoint.New(blobstore.NewMemoryStore(), retention)
}

func mkCheckpoint(id string, ts int64, stepIdx int) *types.Checkpoint {
	return &types.Checkpoint{
		ID:        id,
		Timestamp: ts,
		StepIndex: stepIdx,
		Snapshot:  types.Snapshot{CurrentStep: stepIdx, Steps: []*types.Step{{ID: "s0", Index: 0}}},
	}
}

func TestAppendAndLatest(t *testing.T) {
	s := newStore(10)
	require.NoError(t, s.Append("sess-1", mkCheckpoint("c1", 100, 1)))
	require.NoError(t, s.Append("sess-1", mkCheckpoint("c2", 200, 2)))

	latest, err := s.Latest("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "c2", latest.ID)
}

func TestLatestNotFound(t *testing.T) {
	s := newStore(10)
	_, err := s.Latest("missing")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestRetentionTrimsOldest(t *testing.T) {
	s := newStore(2)
	require.NoError(t, s.Append("sess-1", mkCheckpoint("c1", 100, 1)))
	require.NoError(t, s.Append("sess-1", mkCheckpoint("c2", 200, 2)))
	require.NoError(t, s.Append("sess-1", mkCheckpoint("c3", 300, 3)))

	list, err := s.List("sess-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)
	assert.Equal(t, "c3", list[1].ID)
}

func TestRestoreFromCheckpointRebuildsState(t *testing.T) {
	s := newStore(10)
	cp := mkCheckpoint("c1", 100, 1)
	require.NoError(t, s.Append("sess-1", cp))

	state := &types.ReasoningState{
		ID:          "sess-1",
		CurrentStep: 5,
		Steps:       []*types.Step{{ID: "s0", Index: 0}, {ID: "s1", Index: 1}},
		TotalSteps:  2,
	}
	restored, err := s.RestoreFromCheckpoint(state, "sess-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, restored.CurrentStep)
	assert.Len(t, restored.Steps, 1)
}

func TestRestoreFromUnknownCheckpoint(t *testing.T) {
	s := newStore(10)
	_, err := s.RestoreFromCheckpoint(&types.ReasoningState{}, "sess-1", "nope")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}
