// Package manager implements the ChainManager capability: the
// orchestrator that holds active ReasoningState objects, exposes the
// public API, and coordinates every other component. Grounded on the
// teacher's Manager (pkg/manager/manager.go) for its constructor/Config
// shape and CRUD pass-through style, and on its FSM (fsm.go) for the
// persist-then-publish pattern used on every mutation.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

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

const component = "manager"

// Config holds configuration for creating a ChainManager, layering the
// component-level configs on top of the shared tunables.
type Config struct {
	TimeoutConfig       types.TimeoutConfig
	CheckpointRetention int
	RestorationConfig   restoration.Config
}

// ChainManager is the orchestrator: the only component permitted to
// mutate the active ReasoningState set.
type ChainManager struct {
	blobs       blobstore.BlobStore
	codec       *codec.Codec
	validator   *validator.Validator
	checkpoints *checkpoint.Store
	recovery    *recovery.Planner
	locks       *lock.Manager
	clients     *registry.Registry
	conflicts   *conflict.Resolver
	bus         *events.Bus
	executor    stepexec.StepExecutor
	log         zerolog.Logger

	cfg Config

	mu           sync.RWMutex
	activeStates map[string]*types.ReasoningState
	metadata     map[string]*types.SessionMetadata
	sessionLocks sync.Map // sessionID -> *sync.Mutex

	nowFn func() time.Time
}

// Deps bundles every collaborator ChainManager coordinates. Each field
// is constructed by the caller (typically cmd/reasonctl or a test
// harness), the same way the teacher's Manager wires its store, FSM,
// and event broker before returning.
type Deps struct {
	Blobs       blobstore.BlobStore
	Codec       *codec.Codec
	Validator   *validator.Validator
	Checkpoints *checkpoint.Store
	Recovery    *recovery.Planner
	Locks       *lock.Manager
	Clients     *registry.Registry
	Conflicts   *conflict.Resolver
	Bus         *events.Bus
	Executor    stepexec.StepExecutor
	Log         zerolog.Logger
}

// New constructs a ChainManager from its dependencies and configuration.
func New(deps Deps, cfg Config) *ChainManager {
	return &ChainManager{
		blobs:        deps.Blobs,
		codec:        deps.Codec,
		validator:    deps.Validator,
		checkpoints:  deps.Checkpoints,
		recovery:     deps.Recovery,
		locks:        deps.Locks,
		clients:      deps.Clients,
		conflicts:    deps.Conflicts,
		bus:          deps.Bus,
		executor:     deps.Executor,
		log:          deps.Log.With().Str("component", component).Logger(),
		cfg:          cfg,
		activeStates: make(map[string]*types.ReasoningState),
		metadata:     make(map[string]*types.SessionMetadata),
		nowFn:        time.Now,
	}
}

// sessionMutex returns (creating if absent) the mutex sharding mutation
// access to one session, grounded on the Azure adapter's sync.Map of
// per-key mutexes.
func (m *ChainManager) sessionMutex(sessionID string) *sync.Mutex {
	v, _ := m.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func blobKeyForSession(sessionID string, day string) string {
	return fmt.Sprintf("active/%s/%s/reasoning-state.json", day, sessionID)
}

func metadataKey(sessionID string) string {
	return "metadata/" + sessionID + ".json"
}

func (m *ChainManager) today(now time.Time) string {
	return now.Format("2006-01-02")
}

// emit publishes ev on the bus, filling in the session id.
func (m *ChainManager) emit(ctx context.Context, t events.EventType, sessionID string, data map[string]interface{}) {
	if m.bus == nil {
		return
	}
	m.bus.Emit(ctx, &events.Event{Type: t, SessionID: sessionID, Data: data})
}

// persist writes metadata and the state blob for sessionID. On any
// failure the in-memory active map is left untouched by the caller
// (mutations are built on a copy and only published here on success).
func (m *ChainManager) persist(state *types.ReasoningState, meta *types.SessionMetadata, day string) error {
	data, err := m.codec.Encode(state)
	if err != nil {
		return err
	}
	if err := m.blobs.Put(blobKeyForSession(state.ID, day), data); err != nil {
		return types.Wrap(types.KindIOError, component, "failed to persist state", err)
	}
	metaBytes, err := marshalMetadata(meta)
	if err != nil {
		return err
	}
	if err := m.blobs.Put(metadataKey(state.ID), metaBytes); err != nil {
		return types.Wrap(types.KindIOError, component, "failed to persist metadata", err)
	}
	return nil
}

func (m *ChainManager) buildMetadata(state *types.ReasoningState, status types.SessionStatus, now time.Time) *types.SessionMetadata {
	meta := &types.SessionMetadata{
		ID:              state.ID,
		CreatedAt:       state.CreatedAt,
		LastModified:    state.LastModified,
		LastActivity:    now.UnixMilli(),
		Status:          status,
		ProblemSummary:  state.Problem.Description,
		StrategyName:    state.Strategy.Name,
		TotalSteps:      state.TotalSteps,
		CurrentStep:     state.CurrentStep,
		CheckpointCount: len(state.Checkpoints),
		SchemaVersion:   codec.CurrentVersion,
		TimeoutConfig:   m.cfg.TimeoutConfig,
	}
	meta.DeriveExpiresAt()
	return meta
}
