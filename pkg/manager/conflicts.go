package manager

import (
	"context"

	"github.com/reasonchain/core/pkg/types"
)

// UpdateStateWithConflictResolution applies proposed (produced by
// clientID starting from baseState) against sessionID's current active
// state. When the current state has diverged from baseState, the
// ConflictResolver detects and resolves the conflict before the result
// is persisted and published; otherwise proposed is applied directly.
func (m *ChainManager) UpdateStateWithConflictResolution(ctx context.Context, sessionID, clientID string, proposed, baseState *types.ReasoningState) (*types.ReasoningState, *types.ResolutionResult, error) {
	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	current := m.activeStates[sessionID]
	m.mu.RUnlock()
	if current == nil {
		return nil, nil, types.NewError(types.KindNotFound, component, "session not active: "+sessionID)
	}

	var resolved *types.ReasoningState
	var resolution *types.ResolutionResult

	conflict := m.conflicts.Detect(sessionID, clientID, "current", proposed, current, baseState)
	if conflict == nil {
		resolved = proposed.Clone()
	} else {
		proposer, _ := m.clients.Get(clientID)
		proposerLevel := types.AccessWrite
		if proposer != nil {
			proposerLevel = proposer.AccessLevel
		}
		resolution = m.conflicts.Resolve(conflict, proposerLevel, types.AccessAdmin)
		if resolution.ResolvedState == nil {
			m.emit(ctx, eventLockConflict, sessionID, map[string]interface{}{"clientId": clientID, "conflictId": conflict.ConflictID})
			return nil, resolution, types.NewError(types.KindConflict, component, "conflict requires manual intervention: "+conflict.ConflictID)
		}
		resolved = resolution.ResolvedState.Clone()
	}

	resolved.LastModified = m.nowFn().UnixMilli()
	completed := resolved.CurrentStep == resolved.TotalSteps && resolved.TotalSteps > 0
	m.publishUpdate(ctx, resolved, completed)

	return resolved.Clone(), resolution, nil
}
