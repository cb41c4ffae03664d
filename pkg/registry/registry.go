// Package registry implements the ClientRegistry capability: connection
// lifecycle, per-session client caps, and idle eviction, grounded on
// the teacher's token table (pkg/manager/token.go) generalized from a
// single global token map to a per-session client roster.
package registry

import (
	"sync"
	"time"

	"github.com/reasonchain/core/pkg/types"
)

const component = "registry"

// Config tunes the ClientRegistry.
type Config struct {
	MaxClientsPerSession int
	ClientTimeout        time.Duration
}

// DefaultConfig matches spec.md's configuration surface defaults.
func DefaultConfig() Config {
	return Config{MaxClientsPerSession: 5, ClientTimeout: 5 * time.Minute}
}

// Registry tracks ClientSession bindings.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]*types.ClientSession
	bySession map[string]map[string]struct{}
	cfg      Config
	nowFn    func() time.Time
}

// New returns an empty Registry.
func New(cfg Config) *Registry {
	return &Registry{
		clients:   make(map[string]*types.ClientSession),
		bySession: make(map[string]map[string]struct{}),
		cfg:       cfg,
		nowFn:     time.Now,
	}
}

// Register binds clientID to sessionID. A client already registered to
// a different session is rebound (a client is bound to exactly one
// session, invariant I7). New clients beyond MaxClientsPerSession are
// rejected with CapacityExceeded.
func (r *Registry) Register(clientID, sessionID string, info map[string]interface{}, level types.AccessLevel) (*types.ClientSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFn()
	if existing, ok := r.clients[clientID]; ok && existing.SessionID != sessionID {
		r.unbindLocked(clientID, existing.SessionID)
	}

	roster := r.bySession[sessionID]
	if roster == nil {
		roster = make(map[string]struct{})
		r.bySession[sessionID] = roster
	}
	if _, already := roster[clientID]; !already && len(roster) >= r.cfg.MaxClientsPerSession && r.cfg.MaxClientsPerSession > 0 {
		return nil, types.NewError(types.KindCapacityExceeded, component,
			"session at max clients: "+sessionID)
	}

	cs := &types.ClientSession{
		ClientID:       clientID,
		SessionID:      sessionID,
		ConnectionTime: now.UnixMilli(),
		LastActivity:   now.UnixMilli(),
		AccessLevel:    level,
		ClientInfo:     info,
		Locks:          make(map[string]struct{}),
	}
	r.clients[clientID] = cs
	roster[clientID] = struct{}{}
	return cs, nil
}

func (r *Registry) unbindLocked(clientID, sessionID string) {
	delete(r.clients, clientID)
	if roster, ok := r.bySession[sessionID]; ok {
		delete(roster, clientID)
		if len(roster) == 0 {
			delete(r.bySession, sessionID)
		}
	}
}

// Unregister removes clientID. Callers are responsible for cascading to
// LockManager.ReleaseAllForClient; this package owns only the
// registration table, per the teacher's "one authoritative direction"
// resolution of cyclic client/lock/session references.
func (r *Registry) Unregister(clientID string) (*types.ClientSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.clients[clientID]
	if !ok {
		return nil, types.NewError(types.KindNotFound, component, "client not registered: "+clientID)
	}
	r.unbindLocked(clientID, cs.SessionID)
	return cs, nil
}

// UpdateActivity records a heartbeat for clientID.
func (r *Registry) UpdateActivity(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.clients[clientID]
	if !ok {
		return types.NewError(types.KindNotFound, component, "client not registered: "+clientID)
	}
	cs.LastActivity = r.nowFn().UnixMilli()
	return nil
}

// CanAccess reports whether clientID's access level dominates the level
// required for op, and that clientID is bound to sessionID.
func (r *Registry) CanAccess(clientID, sessionID string, required types.AccessLevel) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.clients[clientID]
	if !ok || cs.SessionID != sessionID {
		return false
	}
	return cs.AccessLevel.Dominates(required)
}

// Get returns the ClientSession for clientID.
func (r *Registry) Get(clientID string) (*types.ClientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cs, ok := r.clients[clientID]
	return cs, ok
}

// SessionClients returns the client ids currently bound to sessionID.
func (r *Registry) SessionClients(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roster := r.bySession[sessionID]
	out := make([]string, 0, len(roster))
	for id := range roster {
		out = append(out, id)
	}
	return out
}

// IdleClients returns client ids whose LastActivity is older than
// ClientTimeout, for cascading eviction.
func (r *Registry) IdleClients() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.nowFn()
	var idle []string
	for id, cs := range r.clients {
		if now.UnixMilli()-cs.LastActivity > r.cfg.ClientTimeout.Milliseconds() {
			idle = append(idle, id)
		}
	}
	return idle
}

// ActiveClientCount returns the number of clients registered to
// sessionID.
func (r *Registry) ActiveClientCount(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySession[sessionID])
}
