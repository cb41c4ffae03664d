package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/codec"
	"github.com/reasonchain/core/pkg/types"
)

func sampleState() *types.ReasoningState {
	return &types.ReasoningState{
		ID:           "reasoning-abc123-deadbeef",
		CreatedAt:    1000,
		LastModified: 1000,
		Problem: types.Problem{
			Description: "test problem",
			GoalState:   "done",
			Complexity:  types.ComplexitySimple,
		},
		Strategy: types.Strategy{Name: types.StrategyTopDown, Type: types.StrategyTypeSequential},
		Steps: []*types.Step{
			{ID: "s0", Index: 0, Description: "step 0", Status: types.StepPending, Confidence: 0.5},
		},
		CurrentStep: 0,
		TotalSteps:  1,
	}
}

func TestRoundTripLossless(t *testing.T) {
	c := codec.New(codec.DefaultMigrations()...)
	in := sampleState()
	data, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Steps[0].ID, out.Steps[0].ID)
	assert.Equal(t, in.TotalSteps, out.TotalSteps)
}

func TestDecodeCorruptBytes(t *testing.T) {
	c := codec.New(codec.DefaultMigrations()...)
	_, err := c.Decode([]byte("not json"))
	require.Error(t, err)
	assert.True(t, types.IsCorrupt(err))
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	c := codec.New(codec.DefaultMigrations()...)
	env := map[string]interface{}{
		"_version":      "0.0.1",
		"_serializedAt": 1,
		"state":         json.RawMessage(`{}`),
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)
	_, err = c.Decode(data)
	require.Error(t, err)
	assert.True(t, types.IsUnsupportedVersion(err))
}

func TestMigrationChainAppliesInOrder(t *testing.T) {
	c := codec.New(codec.DefaultMigrations()...)
	legacy := map[string]interface{}{
		"id":          "reasoning-legacy-00000001",
		"problem":     map[string]interface{}{"description": "d", "goalState": "g", "complexity": "simple"},
		"strategy":    map[string]interface{}{"name": "top_down"},
		"steps":       []interface{}{},
		"currentStep": 0,
		"totalSteps":  0,
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	env := map[string]interface{}{
		"_version":      "1.0.0",
		"_serializedAt": 1,
		"state":         json.RawMessage(raw),
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	out, err := c.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, types.StrategyTypeSequential, out.Strategy.Type)
}
