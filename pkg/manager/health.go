package manager

import (
	"context"

	"github.com/reasonchain/core/pkg/recovery"
	"github.com/reasonchain/core/pkg/types"
	"github.com/reasonchain/core/pkg/validator"
)

// ValidateHealth runs the six-pass validation pipeline against
// sessionID's active state. With autoRepair, repairable issues are
// applied in memory and the result persisted if anything changed.
func (m *ChainManager) ValidateHealth(ctx context.Context, sessionID string, autoRepair bool) (validator.Report, error) {
	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	m.mu.RLock()
	state, ok := m.activeStates[sessionID]
	m.mu.RUnlock()
	if !ok {
		return validator.Report{}, types.NewError(types.KindNotFound, component, "session not active: "+sessionID)
	}

	report := m.validator.Validate(state)
	if !autoRepair {
		return report, nil
	}

	repaired := validator.Repair(state, report)
	after := m.validator.Validate(repaired)
	if len(after.Issues) == len(report.Issues) {
		return report, nil
	}

	repaired.LastModified = m.nowFn().UnixMilli()
	meta := m.buildMetadata(repaired, types.SessionActive, m.nowFn())
	if err := m.persist(repaired, meta, m.today(m.nowFn())); err != nil {
		return report, err
	}

	m.mu.Lock()
	m.activeStates[sessionID] = repaired
	m.metadata[sessionID] = meta
	m.mu.Unlock()

	return after, nil
}

// Recover runs the recovery ladder for sessionID, using its active
// state (if any) as the last-known fallback context, and publishes the
// recovered state on success.
func (m *ChainManager) Recover(ctx context.Context, sessionID string) (recovery.Result, error) {
	mu := m.sessionMutex(sessionID)
	mu.Lock()
	defer mu.Unlock()

	day := m.today(m.nowFn())
	m.mu.RLock()
	lastKnown := m.activeStates[sessionID]
	m.mu.RUnlock()

	m.emit(ctx, "recovery_started", sessionID, nil)

	rctx := recovery.Context{
		SessionID:   sessionID,
		Blobs:       m.blobs,
		Checkpoints: m.checkpoints,
		BlobKey:     blobKeyForSession(sessionID, day),
		LastKnown:   lastKnown,
	}
	result := m.recovery.Recover(ctx, rctx)
	if !result.OK {
		m.emit(ctx, "recovery_failed", sessionID, map[string]interface{}{"strategy": result.StrategyName})
		return result, types.NewError(types.KindInternal, component, "recovery exhausted all strategies")
	}

	result.State.LastModified = m.nowFn().UnixMilli()
	meta := m.buildMetadata(result.State, types.SessionActive, m.nowFn())
	if err := m.persist(result.State, meta, day); err != nil {
		return result, err
	}

	m.mu.Lock()
	m.activeStates[sessionID] = result.State
	m.metadata[sessionID] = meta
	m.mu.Unlock()

	m.emit(ctx, "recovery_succeeded", sessionID, map[string]interface{}{"strategy": result.StrategyName, "recoveryType": string(result.RecoveryType)})
	return result, nil
}
