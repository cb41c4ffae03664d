package manager

import (
	"context"
	"fmt"

	"github.com/reasonchain/core/pkg/types"
)

// StepResult is the outcome of ExecuteNextStep.
type StepResult struct {
	OK            bool
	UpdatedState  *types.ReasoningState
	Err           error
}

// significant implements the auto-checkpoint heuristic from spec.md
// section 4.10: a step with no dependencies, two or more dependents, an
// index divisible by five (including zero), or declared high
// complexity is worth checkpointing.
func significant(state *types.ReasoningState, step *types.Step) bool {
	if len(step.Dependencies) == 0 {
		return true
	}
	if step.Index%5 == 0 {
		return true
	}
	dependents := 0
	for _, s := range state.Steps {
		for _, dep := range s.Dependencies {
			if dep == step.ID {
				dependents++
			}
		}
	}
	if dependents >= 2 {
		return true
	}
	if state.Problem.Complexity == types.ComplexityComplex || state.Problem.Complexity == types.ComplexityExpert {
		return true
	}
	return false
}

// firstPending finds the first step not yet completed/failed/skipped.
func firstPending(state *types.ReasoningState) (*types.Step, int) {
	for i, s := range state.Steps {
		if s.Status == types.StepPending || s.Status == types.StepInProgress {
			return s, i
		}
	}
	return nil, -1
}

// dependenciesSatisfied reports whether every dependency of step is
// completed.
func dependenciesSatisfied(state *types.ReasoningState, step *types.Step) (bool, string) {
	byID := make(map[string]*types.Step, len(state.Steps))
	for _, s := range state.Steps {
		byID[s.ID] = s
	}
	for _, dep := range step.Dependencies {
		depStep, ok := byID[dep]
		if !ok || depStep.Status != types.StepCompleted {
			return false, dep
		}
	}
	return true, ""
}

// ExecuteNextStep advances sessionID's first pending step through
// pending -> in_progress -> completed|failed, persists the result, and
// emits session_updated (and session_completed when the chain
// finishes).
func (m *ChainManager) ExecuteNextStep(ctx context.Context, sessionID string) StepResult {
	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	state, ok := m.activeStates[sessionID]
	m.mu.RUnlock()
	if !ok {
		return StepResult{Err: types.NewError(types.KindNotFound, component, "session not active: "+sessionID)}
	}

	next := state.Clone()
	step, idx := firstPending(next)
	if step == nil {
		return StepResult{OK: true, UpdatedState: next.Clone()}
	}

	if ok, missing := dependenciesSatisfied(next, step); !ok {
		return StepResult{Err: types.NewError(types.KindInvalidInput, component,
			fmt.Sprintf("dependency not satisfied: %s", missing))}
	}

	step.Status = types.StepInProgress
	outcome, err := m.executor.Execute(ctx, step, next)
	if err != nil || !outcome.OK {
		step.Status = types.StepFailed
		if err != nil {
			step.Errors = append(step.Errors, err.Error())
		}
		step.Errors = append(step.Errors, outcome.Errors...)
		next.LastModified = m.nowFn().UnixMilli()
		m.publishUpdate(ctx, next, false)
		m.emit(ctx, eventSessionFailed, sessionID, map[string]interface{}{"stepId": step.ID})
		return StepResult{OK: false, UpdatedState: next.Clone(), Err: types.NewError(types.KindInternal, component, "step execution failed")}
	}

	step.Status = types.StepCompleted
	step.Outputs = outcome.Outputs
	step.Timestamp = m.nowFn().UnixMilli()
	next.CurrentStep = idx + 1
	next.LastModified = m.nowFn().UnixMilli()

	if significant(next, step) {
		cp := &types.Checkpoint{
			ID:        "checkpoint_" + NewSessionID(m.nowFn().UnixMilli()),
			Timestamp: m.nowFn().UnixMilli(),
			StepIndex: next.CurrentStep,
			Snapshot:  types.CloneSnapshot(types.Snapshot{CurrentStep: next.CurrentStep, Steps: next.Steps}),
			Auto:      true,
		}
		if err := m.checkpoints.Append(sessionID, cp); err != nil {
			return StepResult{Err: err}
		}
	}

	completed := next.CurrentStep == next.TotalSteps
	m.publishUpdate(ctx, next, completed)

	return StepResult{OK: true, UpdatedState: next.Clone()}
}

// publishUpdate persists next and swaps it into the active map only on
// success, then emits session_updated (and session_completed exactly
// once when the chain finishes).
func (m *ChainManager) publishUpdate(ctx context.Context, next *types.ReasoningState, completed bool) {
	status := types.SessionActive
	if completed {
		status = types.SessionCompleted
	}
	meta := m.buildMetadata(next, status, m.nowFn())
	if err := m.persist(next, meta, m.today(m.nowFn())); err != nil {
		m.log.Error().Err(err).Str("sessionId", next.ID).Msg("failed to persist step update")
		return
	}

	m.mu.Lock()
	m.activeStates[next.ID] = next
	m.metadata[next.ID] = meta
	m.mu.Unlock()

	m.emit(ctx, eventSessionUpdated, next.ID, nil)
	if completed {
		m.emit(ctx, eventSessionCompleted, next.ID, nil)
	}
}

// ExecuteAllSteps iterates ExecuteNextStep until the chain completes or
// a step fails, writing a final checkpoint on success.
func (m *ChainManager) ExecuteAllSteps(ctx context.Context, sessionID string) StepResult {
	var last StepResult
	for {
		last = m.ExecuteNextStep(ctx, sessionID)
		if last.Err != nil || !last.OK {
			return last
		}
		if last.UpdatedState.CurrentStep == last.UpdatedState.TotalSteps {
			break
		}
	}

	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()
	m.mu.RLock()
	state, ok := m.activeStates[sessionID]
	m.mu.RUnlock()
	if ok {
		cp := &types.Checkpoint{
			ID:        "checkpoint_" + NewSessionID(m.nowFn().UnixMilli()),
			Timestamp: m.nowFn().UnixMilli(),
			StepIndex: state.CurrentStep,
			Snapshot:  types.CloneSnapshot(types.Snapshot{CurrentStep: state.CurrentStep, Steps: state.Steps}),
			Label:     "final",
			Auto:      true,
		}
		_ = m.checkpoints.Append(sessionID, cp)
	}
	return last
}

// RestoreFromCheckpoint rebuilds sessionID's state from checkpointID and
// publishes the result.
func (m *ChainManager) RestoreFromCheckpoint(ctx context.Context, sessionID, checkpointID string) (*types.ReasoningState, error) {
	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	state, ok := m.activeStates[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, types.NewError(types.KindNotFound, component, "session not active: "+sessionID)
	}

	restored, err := m.checkpoints.RestoreFromCheckpoint(state, sessionID, checkpointID)
	if err != nil {
		return nil, err
	}
	restored.LastModified = m.nowFn().UnixMilli()

	meta := m.buildMetadata(restored, types.SessionActive, m.nowFn())
	if err := m.persist(restored, meta, m.today(m.nowFn())); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.activeStates[sessionID] = restored
	m.metadata[sessionID] = meta
	m.mu.Unlock()

	return restored.Clone(), nil
}
