package manager

import (
	"context"

	"github.com/reasonchain/core/pkg/lock"
	"github.com/reasonchain/core/pkg/types"
)

// RegisterClient binds clientID to sessionID and emits client_connected.
func (m *ChainManager) RegisterClient(ctx context.Context, clientID, sessionID string, info map[string]interface{}, level types.AccessLevel) (*types.ClientSession, error) {
	cs, err := m.clients.Register(clientID, sessionID, info, level)
	if err != nil {
		return nil, err
	}
	m.emit(ctx, "client_connected", sessionID, map[string]interface{}{"clientId": clientID})
	return cs, nil
}

// UnregisterClient unbinds clientID, cascading to LockManager for lock
// release, and emits client_disconnected.
func (m *ChainManager) UnregisterClient(ctx context.Context, clientID string) error {
	cs, err := m.clients.Unregister(clientID)
	if err != nil {
		return err
	}
	m.locks.ReleaseAllForClient(clientID)
	m.emit(ctx, "client_disconnected", cs.SessionID, map[string]interface{}{"clientId": clientID})
	return nil
}

// CanClientAccessSession reports whether clientID's access level
// dominates required for sessionID.
func (m *ChainManager) CanClientAccessSession(clientID, sessionID string, required types.AccessLevel) bool {
	return m.clients.CanAccess(clientID, sessionID, required)
}

// AcquireLock requests a lock on behalf of clientID, looking up its
// access level from the registry, and emits lock_acquired or
// lock_conflict.
func (m *ChainManager) AcquireLock(ctx context.Context, req lock.Request) (*types.Lock, error) {
	cs, ok := m.clients.Get(req.ClientID)
	if !ok {
		return nil, types.NewError(types.KindPermissionDenied, component, "client not registered: "+req.ClientID)
	}
	l, err := m.locks.Acquire(req, cs.AccessLevel)
	if err != nil {
		m.emit(ctx, eventLockConflict, req.SessionID, map[string]interface{}{"clientId": req.ClientID})
		return nil, err
	}
	m.emit(ctx, "lock_acquired", req.SessionID, map[string]interface{}{"clientId": req.ClientID, "lockId": l.LockID})
	return l, nil
}

// ReleaseLock releases lockID and emits lock_released.
func (m *ChainManager) ReleaseLock(ctx context.Context, sessionID, lockID string) error {
	if err := m.locks.Release(sessionID, lockID); err != nil {
		return err
	}
	m.emit(ctx, "lock_released", sessionID, map[string]interface{}{"lockId": lockID})
	return nil
}

// ForceReleaseSessionLocks is an admin operation purging all locks and
// the wait queue for sessionID.
func (m *ChainManager) ForceReleaseSessionLocks(sessionID string) {
	m.locks.ForceRelease(sessionID)
}

// ExecuteNextStepWithLock acquires a write lock scoped to step
// execution with lockTimeoutMs, runs ExecuteNextStep, and releases the
// lock on every exit path including a panic.
func (m *ChainManager) ExecuteNextStepWithLock(ctx context.Context, sessionID, clientID string) (result StepResult) {
	req := lock.Request{SessionID: sessionID, ClientID: clientID, Type: types.LockWrite, Scope: types.ScopeStepExecution, Reason: "executeNextStep"}
	l, err := m.AcquireLock(ctx, req)
	if err != nil {
		return StepResult{Err: err}
	}
	defer func() {
		_ = m.ReleaseLock(ctx, sessionID, l.LockID)
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	return m.ExecuteNextStep(ctx, sessionID)
}
