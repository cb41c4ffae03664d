// Package types defines the core data structures shared across the
// reasoning-chain session manager: the managed state itself, its steps
// and checkpoints, and the session/client/lock/conflict records that
// the rest of the packages operate on.
package types

import "time"

// Complexity classifies the expected difficulty of a problem.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
	ComplexityExpert   Complexity = "expert"
)

// StrategyName enumerates the supported reasoning strategies.
type StrategyName string

const (
	StrategyTopDown      StrategyName = "top_down"
	StrategyBottomUp     StrategyName = "bottom_up"
	StrategyDivideConquer StrategyName = "divide_conquer"
	StrategyIncremental  StrategyName = "incremental"
	StrategyParallel     StrategyName = "parallel"
	StrategyIterative    StrategyName = "iterative"
)

// StrategyType describes the shape of execution a strategy implies.
type StrategyType string

const (
	StrategyTypeHierarchical StrategyType = "hierarchical"
	StrategyTypeSequential   StrategyType = "sequential"
	StrategyTypeParallel     StrategyType = "parallel"
	StrategyTypeAdaptive     StrategyType = "adaptive"
)

// StepStatus is the lifecycle state of a single Step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// SessionStatus is the lifecycle state of a session's metadata.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionArchived  SessionStatus = "archived"
	SessionFailed    SessionStatus = "failed"
)

// AccessLevel orders client privilege: admin > write > read.
type AccessLevel string

const (
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
	AccessAdmin AccessLevel = "admin"
)

// Rank returns a total order over access levels so callers can compare
// with plain integer comparison (admin > write > read).
func (a AccessLevel) Rank() int {
	switch a {
	case AccessAdmin:
		return 3
	case AccessWrite:
		return 2
	case AccessRead:
		return 1
	default:
		return 0
	}
}

// Dominates reports whether a is sufficient to perform an operation that
// requires at least `required`.
func (a AccessLevel) Dominates(required AccessLevel) bool {
	return a.Rank() >= required.Rank()
}

// LockType is the requested mode of a Lock.
type LockType string

const (
	LockRead      LockType = "read"
	LockWrite     LockType = "write"
	LockExclusive LockType = "exclusive"
)

// LockScope is the subset of a session a Lock protects.
type LockScope string

const (
	ScopeFullSession   LockScope = "full_session"
	ScopeStepExecution LockScope = "step_execution"
	ScopeMetadataOnly  LockScope = "metadata_only"
)

// ConflictSeverity ranks how serious a detected conflict is.
type ConflictSeverity string

const (
	SeverityLow      ConflictSeverity = "low"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityHigh     ConflictSeverity = "high"
	SeverityCritical ConflictSeverity = "critical"
)

// ConflictType classifies the nature of a detected conflict.
type ConflictType string

const (
	ConflictConcurrentModification ConflictType = "concurrent_modification"
	ConflictStepOverlap            ConflictType = "step_overlap"
	ConflictStateDivergence        ConflictType = "state_divergence"
	ConflictLockViolation          ConflictType = "lock_violation"
)

// ResolutionStrategy names the strategy chosen to resolve a Conflict.
type ResolutionStrategy string

const (
	ResolutionMerge              ResolutionStrategy = "merge"
	ResolutionTimestampBased     ResolutionStrategy = "timestamp_based"
	ResolutionClientPriority     ResolutionStrategy = "client_priority"
	ResolutionRollback           ResolutionStrategy = "rollback"
	ResolutionManualIntervention ResolutionStrategy = "manual_intervention"
)

// Problem describes the task a ReasoningState is working toward.
type Problem struct {
	Description string                 `json:"description"`
	GoalState   string                 `json:"goalState"`
	Complexity  Complexity             `json:"complexity"`
	Constraints []string               `json:"constraints,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Domain      string                 `json:"domain,omitempty"`
}

// Strategy describes the approach a ReasoningState is executing with.
type Strategy struct {
	Name       StrategyName           `json:"name"`
	Type       StrategyType           `json:"type"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Step is a single node in a reasoning chain.
type Step struct {
	ID           string                 `json:"id"`
	Index        int                    `json:"index"`
	Description  string                 `json:"description"`
	Reasoning    string                 `json:"reasoning,omitempty"`
	Status       StepStatus             `json:"status"`
	Inputs       map[string]interface{} `json:"inputs,omitempty"`
	Outputs      map[string]interface{} `json:"outputs,omitempty"`
	Dependencies []string               `json:"dependencies,omitempty"`
	Confidence   float64                `json:"confidence"`
	Timestamp    int64                  `json:"timestamp"`
	DurationMs   int64                  `json:"durationMs,omitempty"`
	Errors       []string               `json:"errors,omitempty"`
}

// Clone returns a deep copy of the step, safe to store in a checkpoint or
// hand to a concurrent reader without aliasing the original's maps/slices.
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	out := *s
	if s.Dependencies != nil {
		out.Dependencies = append([]string(nil), s.Dependencies...)
	}
	if s.Errors != nil {
		out.Errors = append([]string(nil), s.Errors...)
	}
	out.Inputs = cloneMap(s.Inputs)
	out.Outputs = cloneMap(s.Outputs)
	return &out
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CloneSteps deep-copies an ordered sequence of steps.
func CloneSteps(steps []*Step) []*Step {
	if steps == nil {
		return nil
	}
	out := make([]*Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}

// Checkpoint is an immutable snapshot of (currentStep, steps) at a point
// in time.
type Checkpoint struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"`
	StepIndex int     `json:"stepIndex"`
	Snapshot  Snapshot `json:"snapshot"`
	Label     string  `json:"label,omitempty"`
	Auto      bool    `json:"auto"`
}

// Snapshot is the deep-copied payload a Checkpoint carries.
type Snapshot struct {
	CurrentStep int     `json:"currentStep"`
	Steps       []*Step `json:"steps"`
}

// CloneSnapshot returns an independent deep copy of a Snapshot.
func CloneSnapshot(s Snapshot) Snapshot {
	return Snapshot{CurrentStep: s.CurrentStep, Steps: CloneSteps(s.Steps)}
}

// ReasoningState is the managed object: a problem, a strategy, and the
// ordered chain of steps produced to solve it.
type ReasoningState struct {
	ID            string       `json:"id"`
	CreatedAt     int64        `json:"createdAt"`
	LastModified  int64        `json:"lastModified"`
	Problem       Problem      `json:"problem"`
	Strategy      Strategy     `json:"strategy"`
	Steps         []*Step      `json:"steps"`
	CurrentStep   int          `json:"currentStep"`
	TotalSteps    int          `json:"totalSteps"`
	Checkpoints   []*Checkpoint `json:"checkpoints,omitempty"`
}

// Clone deep-copies a ReasoningState so callers never share mutable
// sub-structures with the copy published in the active-state map.
func (s *ReasoningState) Clone() *ReasoningState {
	if s == nil {
		return nil
	}
	out := *s
	out.Steps = CloneSteps(s.Steps)
	out.Problem.Constraints = append([]string(nil), s.Problem.Constraints...)
	out.Problem.Context = cloneMap(s.Problem.Context)
	out.Strategy.Parameters = cloneMap(s.Strategy.Parameters)
	if s.Checkpoints != nil {
		out.Checkpoints = make([]*Checkpoint, len(s.Checkpoints))
		for i, c := range s.Checkpoints {
			cc := *c
			cc.Snapshot = CloneSnapshot(c.Snapshot)
			out.Checkpoints[i] = &cc
		}
	}
	return &out
}

// TimeoutConfig carries the per-status expiry durations used to derive
// SessionMetadata.ExpiresAt.
type TimeoutConfig struct {
	Active    time.Duration `json:"active"`
	Paused    time.Duration `json:"paused"`
	Completed time.Duration `json:"completed"`
}

// Timeout returns the configured timeout for a given session status.
func (t TimeoutConfig) Timeout(status SessionStatus) time.Duration {
	switch status {
	case SessionActive:
		return t.Active
	case SessionPaused:
		return t.Paused
	case SessionCompleted, SessionArchived, SessionFailed:
		return t.Completed
	default:
		return t.Active
	}
}

// SessionMetadata is the persisted sidecar describing a session without
// requiring the full state blob to be loaded.
type SessionMetadata struct {
	ID              string        `json:"id"`
	CreatedAt       int64         `json:"createdAt"`
	LastModified    int64         `json:"lastModified"`
	LastActivity    int64         `json:"lastActivity"`
	Status          SessionStatus `json:"status"`
	ProblemSummary  string        `json:"problemSummary"`
	StrategyName    StrategyName  `json:"strategyName"`
	TotalSteps      int           `json:"totalSteps"`
	CurrentStep     int           `json:"currentStep"`
	CheckpointCount int           `json:"checkpointCount"`
	SchemaVersion   string        `json:"schemaVersion"`
	TimeoutConfig   TimeoutConfig `json:"timeoutConfig"`
	ExpiresAt       int64         `json:"expiresAt"`
}

// DeriveExpiresAt computes and sets ExpiresAt from LastActivity, Status
// and TimeoutConfig (invariant I6).
func (m *SessionMetadata) DeriveExpiresAt() {
	m.ExpiresAt = m.LastActivity + m.TimeoutConfig.Timeout(m.Status).Milliseconds()
}

// ClientSession is a connected client's binding to exactly one session.
type ClientSession struct {
	ClientID       string                 `json:"clientId"`
	SessionID      string                 `json:"sessionId"`
	ConnectionTime int64                  `json:"connectionTime"`
	LastActivity   int64                  `json:"lastActivity"`
	AccessLevel    AccessLevel            `json:"accessLevel"`
	ClientInfo     map[string]interface{} `json:"clientInfo,omitempty"`
	Locks          map[string]struct{}    `json:"-"`
}

// Lock is a session-scoped reader/writer/exclusive lock owned by
// LockManager.
type Lock struct {
	LockID     string    `json:"lockId"`
	SessionID  string    `json:"sessionId"`
	ClientID   string    `json:"clientId"`
	Type       LockType  `json:"type"`
	Scope      LockScope `json:"scope"`
	AcquiredAt int64     `json:"acquiredAt"`
	ExpiresAt  int64     `json:"expiresAt"`
	Reason     string    `json:"reason,omitempty"`
}

// Expired reports whether the lock's TTL has elapsed as of nowMs.
func (l *Lock) Expired(nowMs int64) bool {
	return nowMs >= l.ExpiresAt
}

// Conflict is a disagreement between two clients' concurrent updates
// relative to a common base.
type Conflict struct {
	ConflictID     string           `json:"conflictId"`
	SessionID      string           `json:"sessionId"`
	ClientA        string           `json:"clientA"`
	ClientB        string           `json:"clientB"`
	StateA         *ReasoningState  `json:"stateA"`
	StateB         *ReasoningState  `json:"stateB"`
	BaseState      *ReasoningState  `json:"baseState"`
	AffectedFields []string         `json:"affectedFields"`
	Severity       ConflictSeverity `json:"severity"`
	DetectedAt     int64            `json:"detectedAt"`
	Type           ConflictType     `json:"type"`
}

// ResolutionResult is the outcome of resolving a Conflict.
type ResolutionResult struct {
	Strategy       ResolutionStrategy `json:"strategy"`
	ResolvedState  *ReasoningState    `json:"resolvedState"`
	Confidence     float64            `json:"confidence"`
	ReviewRequired bool               `json:"reviewRequired"`
}
