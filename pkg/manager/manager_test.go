package manager

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/checkpoint"
	"github.com/reasonchain/core/pkg/codec"
	"github.com/reasonchain/core/pkg/conflict"
	"github.com/reasonchain/core/pkg/events"
	"github.com/reasonchain/core/pkg/lock"
	"github.com/reasonchain/core/pkg/recovery"
	"github.com/reasonchain/core/pkg/registry"
	"github.com/reasonchain/core/pkg/restoration"
	"github.com/reasonchain/core/pkg/stepexec"
	"github.com/reasonchain/core/pkg/types"
	"github.com/reasonchain/core/pkg/validator"
)

func newTestManager(t *testing.T, executor stepexec.StepExecutor) (*ChainManager, *events.Bus) {
	t.Helper()
	blobs := blobstore.NewMemoryStore()
	bus := events.New(events.DefaultConfig(), zerolog.Nop())
	deps := Deps{
		Blobs:       blobs,
		Codec:       codec.New(codec.DefaultMigrations()...),
		Validator:   validator.New(),
		Checkpoints: checkpoint.New(blobs, checkpoint.DefaultRetention),
		Recovery:    recovery.New(recovery.DefaultConfig()),
		Locks:       lock.New(lock.DefaultConfig(), zerolog.Nop()),
		Clients:     registry.New(registry.DefaultConfig()),
		Conflicts:   conflict.New(conflict.DefaultConfig()),
		Bus:         bus,
		Executor:    executor,
		Log:         zerolog.Nop(),
	}
	cfg := Config{
		TimeoutConfig: types.TimeoutConfig{
			Active: 0, Paused: 0, Completed: 0,
		},
		CheckpointRetention: checkpoint.DefaultRetention,
		RestorationConfig:   restoration.DefaultConfig(),
	}
	return New(deps, cfg), bus
}

func threeStepChain() []*types.Step {
	return []*types.Step{
		{ID: "S0", Index: 0, Description: "gather inputs", Status: types.StepPending, Confidence: 0.9},
		{ID: "S1", Index: 1, Description: "derive intermediate", Status: types.StepPending, Confidence: 0.9, Dependencies: []string{"S0"}},
		{ID: "S2", Index: 2, Description: "produce answer", Status: types.StepPending, Confidence: 0.9, Dependencies: []string{"S1"}},
	}
}

func testProblem() types.Problem {
	return types.Problem{Description: "solve the thing", GoalState: "answer found", Complexity: types.ComplexityModerate}
}

func testStrategy() types.Strategy {
	return types.Strategy{Name: types.StrategyTopDown, Type: types.StrategyTypeSequential}
}

// TestHappyPathExecutionScenario encodes the three-step S0->S1->S2
// dependency chain: three ExecuteNextStep calls should complete every
// step, advance currentStep to 3, emit exactly one session_completed
// event, and write at least one checkpoint beyond the initial one.
func TestHappyPathExecutionScenario(t *testing.T) {
	m, bus := newTestManager(t, stepexec.NewReference())
	ctx := context.Background()

	completedCount := 0
	bus.Subscribe([]events.EventType{events.EventSessionCompleted}, 0, nil, events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
		completedCount++
		return nil
	}))

	state, err := m.CreateState(ctx, testProblem(), threeStepChain(), testStrategy(), nil)
	require.NoError(t, err)
	require.Len(t, state.Checkpoints, 1)

	for i := 0; i < 3; i++ {
		res := m.ExecuteNextStep(ctx, state.ID)
		require.NoError(t, res.Err)
		require.True(t, res.OK)
	}

	final, err := m.Load(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, final.CurrentStep)
	for _, s := range final.Steps {
		assert.Equal(t, types.StepCompleted, s.Status)
	}
	assert.Equal(t, 1, completedCount)

	cps, err := m.checkpoints.List(state.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(cps), 2)
}

// TestDependencyBlockScenario encodes the dependency-block case: a step
// is ordered ahead of the dependency it names, which stays pending.
// ExecuteNextStep must error naming the blocking dependency rather than
// executing out of order, and currentStep must not advance.
func TestDependencyBlockScenario(t *testing.T) {
	m, _ := newTestManager(t, stepexec.NewReference())
	ctx := context.Background()

	steps := []*types.Step{
		{ID: "S1", Index: 0, Description: "depends on unmet S0", Status: types.StepPending, Confidence: 0.9, Dependencies: []string{"S0"}},
		{ID: "S0", Index: 1, Description: "never run first", Status: types.StepPending, Confidence: 0.9},
	}
	state, err := m.CreateState(ctx, testProblem(), steps, testStrategy(), nil)
	require.NoError(t, err)

	res := m.ExecuteNextStep(ctx, state.ID)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "S0")

	m.mu.RLock()
	cur := m.activeStates[state.ID].CurrentStep
	m.mu.RUnlock()
	assert.Equal(t, 0, cur)
}

func TestCreateStateRejectsCriticalIssues(t *testing.T) {
	m, _ := newTestManager(t, stepexec.NewReference())
	ctx := context.Background()

	// A dependency cycle (S0 -> S1 -> S0) is a critical structural issue
	// and must be rejected before the session is ever persisted.
	cyclic := []*types.Step{
		{ID: "S0", Index: 0, Description: "first", Status: types.StepPending, Confidence: 0.9, Dependencies: []string{"S1"}},
		{ID: "S1", Index: 1, Description: "second", Status: types.StepPending, Confidence: 0.9, Dependencies: []string{"S0"}},
	}
	_, err := m.CreateState(ctx, testProblem(), cyclic, testStrategy(), nil)
	require.Error(t, err)
	assert.True(t, types.IsInvalidInput(err))
}

func TestValidateHealthAutoRepair(t *testing.T) {
	m, _ := newTestManager(t, stepexec.NewReference())
	ctx := context.Background()

	state, err := m.CreateState(ctx, testProblem(), threeStepChain(), testStrategy(), nil)
	require.NoError(t, err)

	m.mu.Lock()
	active := m.activeStates[state.ID]
	active.Steps[1].Confidence = 5.0
	m.mu.Unlock()

	report, err := m.ValidateHealth(ctx, state.ID, true)
	require.NoError(t, err)

	m.mu.RLock()
	confAfter := m.activeStates[state.ID].Steps[1].Confidence
	m.mu.RUnlock()
	assert.LessOrEqual(t, confAfter, 1.0)
	_ = report
}
