package lock_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/lock"
	"github.com/reasonchain/core/pkg/types"
)

func newManager() *lock.Manager {
	return lock.New(lock.DefaultConfig(), zerolog.Nop())
}

func TestCompatibleReadLocksBothSucceed(t *testing.T) {
	m := newManager()
	req := lock.Request{SessionID: "s1", ClientID: "a", Type: types.LockRead, Scope: types.ScopeMetadataOnly}
	_, err := m.Acquire(req, types.AccessRead)
	require.NoError(t, err)

	req2 := lock.Request{SessionID: "s1", ClientID: "b", Type: types.LockRead, Scope: types.ScopeMetadataOnly}
	_, err = m.Acquire(req2, types.AccessRead)
	require.NoError(t, err)
}

// Scenario 3 from the testable-properties set: two write locks on the
// same session queue and resolve in FIFO order after release.
func TestLockQueueingScenario(t *testing.T) {
	m := newManager()
	reqA := lock.Request{SessionID: "s1", ClientID: "A", Type: types.LockWrite, Scope: types.ScopeFullSession}
	lockA, err := m.Acquire(reqA, types.AccessWrite)
	require.NoError(t, err)
	require.NotNil(t, lockA)

	reqB := lock.Request{SessionID: "s1", ClientID: "B", Type: types.LockWrite, Scope: types.ScopeFullSession}
	_, err = m.Acquire(reqB, types.AccessWrite)
	require.Error(t, err)
	var conflictErr *lock.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.ConflictingLocks, 1)
	assert.Equal(t, lockA.LockID, conflictErr.ConflictingLocks[0].LockID)
	assert.GreaterOrEqual(t, conflictErr.WaitTimeMs, int64(0))

	require.NoError(t, m.Release("s1", lockA.LockID))

	lockB, err := m.Acquire(reqB, types.AccessWrite)
	require.NoError(t, err)
	assert.Equal(t, "B", lockB.ClientID)
}

func TestAcquireExclusiveRequiresAdmin(t *testing.T) {
	m := newManager()
	req := lock.Request{SessionID: "s1", ClientID: "a", Type: types.LockExclusive, Scope: types.ScopeFullSession}
	_, err := m.Acquire(req, types.AccessWrite)
	require.Error(t, err)
	assert.True(t, types.IsPermissionDenied(err))

	_, err = m.Acquire(req, types.AccessAdmin)
	require.NoError(t, err)
}

func TestReleaseUnknownLockIsNotFound(t *testing.T) {
	m := newManager()
	err := m.Release("s1", "lock_0_unknown")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestForceReleasePurgesLocksAndQueue(t *testing.T) {
	m := newManager()
	reqA := lock.Request{SessionID: "s1", ClientID: "A", Type: types.LockWrite, Scope: types.ScopeFullSession}
	_, err := m.Acquire(reqA, types.AccessWrite)
	require.NoError(t, err)

	reqB := lock.Request{SessionID: "s1", ClientID: "B", Type: types.LockWrite, Scope: types.ScopeFullSession}
	_, err = m.Acquire(reqB, types.AccessWrite)
	require.Error(t, err)

	m.ForceRelease("s1")

	_, err = m.Acquire(reqB, types.AccessWrite)
	require.NoError(t, err)
}

// P10: after releasing all locks for a client, none remain.
func TestReleaseAllForClientRemovesAllLocks(t *testing.T) {
	m := newManager()
	req := lock.Request{SessionID: "s1", ClientID: "A", Type: types.LockRead, Scope: types.ScopeMetadataOnly}
	_, err := m.Acquire(req, types.AccessRead)
	require.NoError(t, err)

	m.ReleaseAllForClient("A")

	for _, l := range m.Locks("s1") {
		assert.NotEqual(t, "A", l.ClientID)
	}
}
