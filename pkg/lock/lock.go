// Package lock implements the LockManager capability: session-scoped
// multi-reader/single-writer/exclusive locks with a FIFO wait queue and
// TTL-based expiry. Grounded on the teacher's token table
// (pkg/manager/token.go: map + mutex + TTL + periodic cleanup sweep)
// generalized to a per-session queue, and on the Azure
// concurrent_adapter.go pattern of a mutex-protected table with a
// ticker-driven cleanup routine.
package lock

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reasonchain/core/pkg/types"
)

const component = "lock"

var base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	out := make([]byte, n)
	for i := range out {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(base36Digits))))
		out[i] = base36Digits[idx.Int64()]
	}
	return string(out)
}

// NewLockID generates a lock id following the spec grammar
// lock_<epochMs>_<9 random base36 chars>.
func NewLockID(nowMs int64) string {
	return fmt.Sprintf("lock_%d_%s", nowMs, randomBase36(9))
}

// Request is a pending or granted lock acquisition.
type Request struct {
	SessionID string
	ClientID  string
	Type      types.LockType
	Scope     types.LockScope
	Reason    string
}

// ConflictError is returned by Acquire when the request cannot be
// granted immediately.
type ConflictError struct {
	WaitTimeMs      int64
	ConflictingLocks []*types.Lock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("lock conflict: waitTime=%dms conflictingLocks=%d", e.WaitTimeMs, len(e.ConflictingLocks))
}

// Config tunes the LockManager.
type Config struct {
	LockTimeout    time.Duration
	ClientTimeout  time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig matches spec.md's configuration surface defaults.
func DefaultConfig() Config {
	return Config{
		LockTimeout:     30 * time.Second,
		ClientTimeout:   5 * time.Minute,
		CleanupInterval: 60 * time.Second,
	}
}

type sessionState struct {
	locks []*types.Lock
	queue []*Request
	// pendingGrants holds locks the queue drain already materialized
	// into locks but whose owning client hasn't reclaimed yet, keyed by
	// requestKey. A retry with the same request fields picks the grant
	// up directly instead of re-running conflict detection against the
	// very lock it was just given.
	pendingGrants map[string]*types.Lock
}

// requestKey identifies the (session, client, type, scope) identity a
// queued request and its eventual retry share.
func requestKey(req Request) string {
	return req.SessionID + "\x00" + req.ClientID + "\x00" + string(req.Type) + "\x00" + string(req.Scope)
}

// Manager is the LockManager implementation.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
	// clientActivity tracks the last time a client was seen, for the
	// cleanup sweep's idle-client cascade.
	clientActivity map[string]time.Time
	cfg            Config
	log            zerolog.Logger

	stopCh chan struct{}
	nowFn  func() time.Time
}

// New returns a Manager with the given config and logger.
func New(cfg Config, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:       make(map[string]*sessionState),
		clientActivity: make(map[string]time.Time),
		cfg:            cfg,
		log:            log,
		nowFn:          time.Now,
	}
}

// Start launches the background cleanup sweep. Stop must be called to
// release the goroutine.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.stopCh != nil {
		m.mu.Unlock()
		return
	}
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	go m.cleanupLoop()
}

// Stop halts the background cleanup sweep.
func (m *Manager) Stop() {
	m.mu.Lock()
	stopCh := m.stopCh
	m.stopCh = nil
	m.mu.Unlock()
	if stopCh != nil {
		close(stopCh)
	}
}

func (m *Manager) cleanupLoop() {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Cleanup()
		case <-m.stopChSnapshot():
			return
		}
	}
}

func (m *Manager) stopChSnapshot() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCh
}

func compatible(heldType types.LockType, heldScope types.LockScope, reqType types.LockType, reqScope types.LockScope) bool {
	if heldScope == types.ScopeFullSession || reqScope == types.ScopeFullSession {
		return false
	}
	return heldType == types.LockRead && reqType == types.LockRead
}

func permissionFor(level types.AccessLevel, reqType types.LockType) bool {
	switch reqType {
	case types.LockRead:
		return level.Rank() >= types.AccessRead.Rank()
	case types.LockWrite:
		return level.Rank() >= types.AccessWrite.Rank()
	case types.LockExclusive:
		return level.Rank() >= types.AccessAdmin.Rank()
	default:
		return false
	}
}

// Acquire attempts to grant req for clientLevel's access level. On
// success it returns the materialized Lock. On conflict it queues req
// FIFO and returns a *ConflictError.
func (m *Manager) Acquire(req Request, clientLevel types.AccessLevel) (*types.Lock, error) {
	if !permissionFor(clientLevel, req.Type) {
		return nil, types.NewError(types.KindPermissionDenied, component,
			fmt.Sprintf("access level %s insufficient for %s lock", clientLevel, req.Type))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	st := m.sessionFor(req.SessionID)
	m.dropExpiredLocked(st, now)

	if granted, ok := st.pendingGrants[requestKey(req)]; ok {
		delete(st.pendingGrants, requestKey(req))
		m.clientActivity[req.ClientID] = now
		return granted, nil
	}

	conflicts := m.conflictsLocked(st, req)
	if len(conflicts) == 0 {
		lock := &types.Lock{
			LockID:     NewLockID(now.UnixMilli()),
			SessionID:  req.SessionID,
			ClientID:   req.ClientID,
			Type:       req.Type,
			Scope:      req.Scope,
			AcquiredAt: now.UnixMilli(),
			ExpiresAt:  now.Add(m.cfg.LockTimeout).UnixMilli(),
			Reason:     req.Reason,
		}
		st.locks = append(st.locks, lock)
		m.clientActivity[req.ClientID] = now
		return lock, nil
	}

	st.queue = append(st.queue, &req)
	waitTime := conflicts[0].ExpiresAt - now.UnixMilli()
	for _, c := range conflicts[1:] {
		if c.ExpiresAt-now.UnixMilli() < waitTime {
			waitTime = c.ExpiresAt - now.UnixMilli()
		}
	}
	if waitTime < 0 {
		waitTime = 0
	}
	return nil, &ConflictError{WaitTimeMs: waitTime, ConflictingLocks: conflicts}
}

func (m *Manager) conflictsLocked(st *sessionState, req Request) []*types.Lock {
	var conflicts []*types.Lock
	for _, held := range st.locks {
		if held.ClientID == req.ClientID && held.Type == types.LockRead && req.Type == types.LockRead {
			continue
		}
		if !compatible(held.Type, held.Scope, req.Type, req.Scope) {
			conflicts = append(conflicts, held)
		}
	}
	return conflicts
}

func (m *Manager) sessionFor(sessionID string) *sessionState {
	st, ok := m.sessions[sessionID]
	if !ok {
		st = &sessionState{}
		m.sessions[sessionID] = st
	}
	return st
}

func (m *Manager) dropExpiredLocked(st *sessionState, now time.Time) {
	nowMs := now.UnixMilli()
	kept := st.locks[:0]
	live := make(map[string]bool, len(st.locks))
	for _, l := range st.locks {
		if !l.Expired(nowMs) {
			kept = append(kept, l)
			live[l.LockID] = true
		}
	}
	st.locks = kept
	for key, l := range st.pendingGrants {
		if !live[l.LockID] {
			delete(st.pendingGrants, key)
		}
	}
}

// Release removes lockID and drains the session's wait queue in FIFO
// order, granting each request whose compatibility now holds.
func (m *Manager) Release(sessionID, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		return types.NewError(types.KindNotFound, component, "lock not found: "+lockID)
	}

	idx := -1
	for i, l := range st.locks {
		if l.LockID == lockID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return types.NewError(types.KindNotFound, component, "lock not found: "+lockID)
	}
	st.locks = append(st.locks[:idx], st.locks[idx+1:]...)

	m.drainQueueLocked(st)
	return nil
}

// drainQueueLocked grants queued requests in order while compatibility
// holds; a request that still conflicts remains at its position and
// blocks no later request from being considered in the same pass,
// matching the "no reordering" contract. A granted request is recorded
// in pendingGrants so the owning client's retry (the documented
// "acquire again" path, since there is no callback-based wakeup)
// reclaims the lock instead of conflicting with it.
func (m *Manager) drainQueueLocked(st *sessionState) {
	now := m.nowFn()
	var remaining []*Request
	for _, req := range st.queue {
		conflicts := m.conflictsLocked(st, *req)
		if len(conflicts) == 0 {
			lock := &types.Lock{
				LockID:     NewLockID(now.UnixMilli()),
				SessionID:  req.SessionID,
				ClientID:   req.ClientID,
				Type:       req.Type,
				Scope:      req.Scope,
				AcquiredAt: now.UnixMilli(),
				ExpiresAt:  now.Add(m.cfg.LockTimeout).UnixMilli(),
				Reason:     req.Reason,
			}
			st.locks = append(st.locks, lock)
			if st.pendingGrants == nil {
				st.pendingGrants = make(map[string]*types.Lock)
			}
			st.pendingGrants[requestKey(*req)] = lock
			continue
		}
		remaining = append(remaining, req)
	}
	st.queue = remaining
}

// ForceRelease purges all locks and the wait queue for sessionID. It is
// an admin operation; waiting clients observe success on their next
// Acquire call.
func (m *Manager) ForceRelease(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ReleaseAllForClient removes every lock held by clientID across every
// session, used when a client unregisters (P10).
func (m *Manager) ReleaseAllForClient(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.sessions {
		kept := st.locks[:0]
		for _, l := range st.locks {
			if l.ClientID != clientID {
				kept = append(kept, l)
			}
		}
		st.locks = kept
		for key, l := range st.pendingGrants {
			if l.ClientID == clientID {
				delete(st.pendingGrants, key)
			}
		}
		m.drainQueueLocked(st)
	}
	delete(m.clientActivity, clientID)
}

// Touch records clientID as active now, feeding the idle-client sweep.
func (m *Manager) Touch(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientActivity[clientID] = m.nowFn()
}

// Cleanup drops expired locks across all sessions and cascades release
// for clients idle longer than ClientTimeout.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	for _, st := range m.sessions {
		m.dropExpiredLocked(st, now)
	}

	var idle []string
	for clientID, last := range m.clientActivity {
		if now.Sub(last) > m.cfg.ClientTimeout {
			idle = append(idle, clientID)
		}
	}
	for _, clientID := range idle {
		for _, st := range m.sessions {
			kept := st.locks[:0]
			for _, l := range st.locks {
				if l.ClientID != clientID {
					kept = append(kept, l)
				}
			}
			st.locks = kept
			for key, l := range st.pendingGrants {
				if l.ClientID == clientID {
					delete(st.pendingGrants, key)
				}
			}
		}
		delete(m.clientActivity, clientID)
	}
	for _, st := range m.sessions {
		m.drainQueueLocked(st)
	}
	if len(idle) > 0 {
		m.log.Debug().Int("evicted", len(idle)).Msg("lock cleanup evicted idle clients")
	}
}

// Locks returns a snapshot of the active locks for sessionID.
func (m *Manager) Locks(sessionID string) []*types.Lock {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]*types.Lock, len(st.locks))
	copy(out, st.locks)
	sort.Slice(out, func(i, j int) bool { return out[i].AcquiredAt < out[j].AcquiredAt })
	return out
}

// QueueLen returns the number of queued (not yet granted) requests for
// sessionID.
func (m *Manager) QueueLen(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[sessionID]
	if !ok {
		return 0
	}
	return len(st.queue)
}
