package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/reasonchain/core/pkg/types"
)

// CreateState validates the proposed steps (I1-I5), assigns an id,
// writes an initial checkpoint, persists, and emits session_created.
func (m *ChainManager) CreateState(ctx context.Context, problem types.Problem, steps []*types.Step, strategy types.Strategy, meta map[string]interface{}) (*types.ReasoningState, error) {
	now := m.nowFn()

	state := &types.ReasoningState{
		ID:           NewSessionID(now.UnixMilli()),
		CreatedAt:    now.UnixMilli(),
		LastModified: now.UnixMilli(),
		Problem:      problem,
		Strategy:     strategy,
		Steps:        types.CloneSteps(steps),
		CurrentStep:  0,
		TotalSteps:   len(steps),
	}

	report := m.validator.Validate(state)
	if report.HasCritical() {
		return nil, types.NewError(types.KindInvalidInput, component,
			fmt.Sprintf("step graph rejected: %d issues", len(report.Issues)))
	}

	initial := &types.Checkpoint{
		ID:        "checkpoint_" + NewSessionID(now.UnixMilli()),
		Timestamp: now.UnixMilli(),
		StepIndex: 0,
		Snapshot:  types.CloneSnapshot(types.Snapshot{CurrentStep: 0, Steps: state.Steps}),
		Label:     "initial",
		Auto:      true,
	}
	if err := m.checkpoints.Append(state.ID, initial); err != nil {
		return nil, err
	}
	state.Checkpoints = []*types.Checkpoint{initial}

	sessionMeta := m.buildMetadata(state, types.SessionActive, now)
	day := m.today(now)
	if err := m.persist(state, sessionMeta, day); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.activeStates[state.ID] = state
	m.metadata[state.ID] = sessionMeta
	m.mu.Unlock()

	m.emit(ctx, eventSessionCreated, state.ID, nil)
	return state.Clone(), nil
}

// Load brings a persisted session into the active set, transitioning
// metadata paused -> active. Load is idempotent.
func (m *ChainManager) Load(ctx context.Context, sessionID string) (*types.ReasoningState, error) {
	m.mu.RLock()
	if existing, ok := m.activeStates[sessionID]; ok {
		m.mu.RUnlock()
		return existing.Clone(), nil
	}
	m.mu.RUnlock()

	metaBytes, err := m.blobs.Get(metadataKey(sessionID))
	if err != nil {
		return nil, err
	}
	meta, err := unmarshalMetadata(metaBytes)
	if err != nil {
		return nil, err
	}

	// The state blob lives under the day it was last persisted, which is
	// not necessarily today; keys are sorted, so the latest day wins.
	key := blobKeyForSession(sessionID, m.today(m.nowFn()))
	if keys, err := m.blobs.ListPrefix("active/"); err == nil {
		suffix := "/" + sessionID + "/reasoning-state.json"
		for _, k := range keys {
			if strings.HasSuffix(k, suffix) {
				key = k
			}
		}
	}
	data, err := m.blobs.Get(key)
	if err != nil {
		return nil, err
	}
	state, err := m.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	if meta.Status == types.SessionPaused {
		meta.Status = types.SessionActive
	}
	meta.DeriveExpiresAt()

	m.mu.Lock()
	m.activeStates[sessionID] = state
	m.metadata[sessionID] = meta
	m.mu.Unlock()

	return state.Clone(), nil
}

// Save forces persistence of stateID. With backup=true, copies the
// existing tree to a backups/ snapshot before writing.
func (m *ChainManager) Save(ctx context.Context, stateID string, backup bool) error {
	mu := m.sessionMutex(stateID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	state, ok := m.activeStates[stateID]
	meta := m.metadata[stateID]
	m.mu.RUnlock()
	if !ok {
		return types.NewError(types.KindNotFound, component, "session not active: "+stateID)
	}

	day := m.today(m.nowFn())
	if backup {
		src := fmt.Sprintf("active/%s/%s/", day, stateID)
		dst := fmt.Sprintf("backups/%s-%d/", stateID, m.nowFn().UnixMilli())
		if err := m.blobs.CopyTree(src, dst); err != nil {
			return err
		}
	}
	return m.persist(state, meta, day)
}

// Remove persists the final status and removes stateID from the active
// set. finalStatus must be completed or archived.
func (m *ChainManager) Remove(ctx context.Context, stateID string, finalStatus types.SessionStatus) error {
	if finalStatus != types.SessionCompleted && finalStatus != types.SessionArchived {
		return types.NewError(types.KindInvalidInput, component, "finalStatus must be completed or archived")
	}

	mu := m.sessionMutex(stateID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	state, ok := m.activeStates[stateID]
	m.mu.RUnlock()
	if !ok {
		return types.NewError(types.KindNotFound, component, "session not active: "+stateID)
	}

	now := m.nowFn()
	meta := m.buildMetadata(state, finalStatus, now)
	if err := m.persist(state, meta, m.today(now)); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.activeStates, stateID)
	delete(m.metadata, stateID)
	m.mu.Unlock()

	m.locks.ForceRelease(stateID)
	return nil
}

// Resume validates bounds, resets steps at or after fromStep to
// pending, and writes a checkpoint labeled "Session resumed".
func (m *ChainManager) Resume(ctx context.Context, sessionID string, fromStep int) (*types.ReasoningState, error) {
	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	state, ok := m.activeStates[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, types.NewError(types.KindNotFound, component, "session not active: "+sessionID)
	}
	if fromStep < 0 || fromStep > state.TotalSteps {
		return nil, types.NewError(types.KindInvalidInput, component, "fromStep out of range")
	}

	next := state.Clone()
	for i := fromStep; i < len(next.Steps); i++ {
		next.Steps[i].Status = types.StepPending
	}
	next.CurrentStep = fromStep
	next.LastModified = m.nowFn().UnixMilli()

	cp := &types.Checkpoint{
		ID:        "checkpoint_" + NewSessionID(m.nowFn().UnixMilli()),
		Timestamp: m.nowFn().UnixMilli(),
		StepIndex: next.CurrentStep,
		Snapshot:  types.CloneSnapshot(types.Snapshot{CurrentStep: next.CurrentStep, Steps: next.Steps}),
		Label:     "Session resumed",
		Auto:      true,
	}
	if err := m.checkpoints.Append(sessionID, cp); err != nil {
		return nil, err
	}

	meta := m.buildMetadata(next, types.SessionActive, m.nowFn())
	if err := m.persist(next, meta, m.today(m.nowFn())); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.activeStates[sessionID] = next
	m.metadata[sessionID] = meta
	m.mu.Unlock()

	return next.Clone(), nil
}
