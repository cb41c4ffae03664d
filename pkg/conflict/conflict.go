// Package conflict implements the ConflictResolver capability: three-way
// field/step/divergence detection between two clients' concurrent
// updates over a common base, severity classification, and a
// deterministic strategy table for resolution. The teacher has no
// direct analog; the detection style (comparing a snapshot against a
// baseline and classifying drift by field) is grounded on
// pkg/reconciler/reconciler.go's drift-classification loop.
package conflict

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/reasonchain/core/pkg/types"
)

const component = "conflict"

// Config tunes conflict detection and resolution.
type Config struct {
	DivergenceThreshold  float64
	AutoResolutionEnabled bool
	PreferTimestampOnStepOverlap bool
}

// DefaultConfig matches spec.md's conflictThreshold default (0.3) with
// automatic resolution enabled.
func DefaultConfig() Config {
	return Config{DivergenceThreshold: 0.3, AutoResolutionEnabled: true, PreferTimestampOnStepOverlap: true}
}

var criticalFields = map[string]bool{"currentStep": true, "status": true, "totalSteps": true}
var highFields = map[string]bool{"steps": true, "problem": true, "strategy": true}
var mediumFields = map[string]bool{"metadata": true, "qualityMetrics": true, "problem.constraints": true}

// additiveFields are list-shaped sub-fields whose merge semantics are a
// plain set-union (see mergeStates) rather than a pick-a-winner
// decision. A diff confined entirely to these fields is classified as
// divergence rather than concurrent modification: both clients made an
// independent, non-conflicting extension of a shared base, not a clash
// over the same value.
var additiveFields = map[string]bool{"problem.constraints": true}

func severityForField(field string) types.ConflictSeverity {
	switch {
	case criticalFields[field]:
		return types.SeverityCritical
	case highFields[field]:
		return types.SeverityHigh
	case mediumFields[field]:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func maxSeverity(a, b types.ConflictSeverity) types.ConflictSeverity {
	rank := map[types.ConflictSeverity]int{
		types.SeverityLow: 0, types.SeverityMedium: 1, types.SeverityHigh: 2, types.SeverityCritical: 3,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// Resolver detects and resolves conflicts between two ReasoningState
// updates over a common base.
type Resolver struct {
	cfg   Config
	nowFn func() time.Time

	conflictsByType       map[types.ConflictType]int
	resolutionsByStrategy map[types.ResolutionStrategy]int
	totalResolutions      int
	totalResolutionTimeMs int64
	successCount          int
}

// New returns a Resolver with the given config.
func New(cfg Config) *Resolver {
	return &Resolver{
		cfg:                   cfg,
		nowFn:                 time.Now,
		conflictsByType:       make(map[types.ConflictType]int),
		resolutionsByStrategy: make(map[types.ResolutionStrategy]int),
	}
}

// fieldValues extracts the comparable field projection of a state used
// for field-level diffing.
type fieldValues map[string]interface{}

func projectFields(s *types.ReasoningState) fieldValues {
	if s == nil {
		return nil
	}
	return fieldValues{
		"currentStep":         s.CurrentStep,
		"totalSteps":          s.TotalSteps,
		"steps":               s.Steps,
		"problem":             problemCore(s.Problem),
		"problem.constraints": s.Problem.Constraints,
		"strategy":            s.Strategy,
	}
}

// problemCore strips the additive Constraints field so a diff confined
// to constraints doesn't also register as a change to the structural
// part of Problem (Description/GoalState/Complexity/Domain/Context).
func problemCore(p types.Problem) types.Problem {
	p.Constraints = nil
	return p
}

// allAdditive reports whether every affected field is additive, i.e.
// merges as a set-union rather than requiring a pick-a-winner decision.
func allAdditive(fields []string) bool {
	for _, f := range fields {
		if !additiveFields[f] {
			return false
		}
	}
	return len(fields) > 0
}

// Detect compares stateA and stateB against baseState and returns a
// Conflict if any non-low-severity field differs, or any field differs
// with automatic resolution disabled. Returns nil if no conflict is
// detected.
func (r *Resolver) Detect(sessionID, clientA, clientB string, stateA, stateB, baseState *types.ReasoningState) *types.Conflict {
	fa := projectFields(stateA)
	fb := projectFields(stateB)

	var affected []string
	severity := types.SeverityLow
	ctype := types.ConflictConcurrentModification

	for field, va := range fa {
		vb := fb[field]
		if !equalValue(va, vb) {
			affected = append(affected, field)
			severity = maxSeverity(severity, severityForField(field))
		}
	}

	if ctype == types.ConflictConcurrentModification && allAdditive(affected) {
		ctype = types.ConflictStateDivergence
	}

	if stateA != nil && stateB != nil && baseState != nil {
		if stateA.CurrentStep != stateB.CurrentStep && stateA.CurrentStep != baseState.CurrentStep && stateB.CurrentStep != baseState.CurrentStep {
			severity = maxSeverity(severity, types.SeverityHigh)
			ctype = types.ConflictStepOverlap
		}
	}

	if sim := jaccardSimilarity(fa, fb); sim < r.cfg.DivergenceThreshold {
		severity = maxSeverity(severity, types.SeverityMedium)
		if ctype == types.ConflictConcurrentModification {
			ctype = types.ConflictStateDivergence
		}
	}

	if len(affected) == 0 {
		return nil
	}
	if severity == types.SeverityLow && r.cfg.AutoResolutionEnabled {
		return nil
	}

	c := &types.Conflict{
		ConflictID:     "conflict_" + uuid.NewString(),
		SessionID:      sessionID,
		ClientA:        clientA,
		ClientB:        clientB,
		StateA:         stateA,
		StateB:         stateB,
		BaseState:      baseState,
		AffectedFields: affected,
		Severity:       severity,
		DetectedAt:     r.nowFn().UnixMilli(),
		Type:           ctype,
	}
	r.conflictsByType[ctype]++
	return c
}

// jaccardSimilarity computes a Jaccard-like similarity over common keys
// whose values match, approximating the spec's divergence heuristic.
func jaccardSimilarity(a, b fieldValues) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	union := map[string]bool{}
	for k := range a {
		union[k] = true
	}
	for k := range b {
		union[k] = true
	}
	if len(union) == 0 {
		return 1
	}
	matches := 0
	for k := range union {
		if equalValue(a[k], b[k]) {
			matches++
		}
	}
	return float64(matches) / float64(len(union))
}

func equalValue(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

// selectStrategy implements the deterministic strategy-selection table
// from the spec.
func (r *Resolver) selectStrategy(c *types.Conflict) types.ResolutionStrategy {
	switch c.Severity {
	case types.SeverityCritical:
		return types.ResolutionManualIntervention
	case types.SeverityHigh:
		if c.Type == types.ConflictStepOverlap {
			if r.cfg.PreferTimestampOnStepOverlap {
				return types.ResolutionTimestampBased
			}
			return types.ResolutionClientPriority
		}
		return types.ResolutionManualIntervention
	case types.SeverityMedium:
		if c.Type == types.ConflictStateDivergence {
			if r.cfg.AutoResolutionEnabled {
				return types.ResolutionMerge
			}
			return types.ResolutionManualIntervention
		}
		if r.cfg.AutoResolutionEnabled {
			return types.ResolutionTimestampBased
		}
		return types.ResolutionManualIntervention
	default: // low
		if r.cfg.AutoResolutionEnabled {
			return types.ResolutionMerge
		}
		return types.ResolutionTimestampBased
	}
}

// Resolve applies the selected strategy's semantics and records
// statistics. clientALevel/clientBLevel are used by client_priority.
func (r *Resolver) Resolve(c *types.Conflict, clientALevel, clientBLevel types.AccessLevel) *types.ResolutionResult {
	start := r.nowFn()
	strategy := r.selectStrategy(c)

	var result *types.ResolutionResult
	switch strategy {
	case types.ResolutionMerge:
		result = &types.ResolutionResult{Strategy: strategy, ResolvedState: mergeStates(c.StateA, c.StateB), Confidence: 0.8, ReviewRequired: false}
	case types.ResolutionTimestampBased:
		winner := c.StateA
		if c.StateB != nil && (c.StateA == nil || c.StateB.LastModified > c.StateA.LastModified) {
			winner = c.StateB
		}
		result = &types.ResolutionResult{Strategy: strategy, ResolvedState: winner, Confidence: 0.9, ReviewRequired: false}
	case types.ResolutionClientPriority:
		winner := c.StateA
		if clientBLevel.Rank() > clientALevel.Rank() {
			winner = c.StateB
		}
		result = &types.ResolutionResult{Strategy: strategy, ResolvedState: winner, Confidence: 0.7, ReviewRequired: true}
	case types.ResolutionRollback:
		result = &types.ResolutionResult{Strategy: strategy, ResolvedState: c.BaseState, Confidence: 1.0, ReviewRequired: true}
	default: // manual_intervention
		result = &types.ResolutionResult{Strategy: types.ResolutionManualIntervention, ResolvedState: c.BaseState, Confidence: 0.0, ReviewRequired: true}
	}

	elapsed := r.nowFn().Sub(start).Milliseconds()
	r.resolutionsByStrategy[strategy]++
	r.totalResolutions++
	r.totalResolutionTimeMs += elapsed
	if result.Confidence > 0 {
		r.successCount++
	}
	return result
}

// mergeStates implements the per-field merge semantics:
// Problem.Constraints becomes the set-union of both lists,
// Problem.Context and Strategy.Parameters shallow-merge with B
// overwriting A on overlapping keys, and every other field (Steps
// included) is taken whole from the state with the newer LastModified.
func mergeStates(a, b *types.ReasoningState) *types.ReasoningState {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}

	base := a
	if b.LastModified > a.LastModified {
		base = b
	}
	out := base.Clone()

	out.Problem.Constraints = unionStrings(a.Problem.Constraints, b.Problem.Constraints)
	out.Problem.Context = shallowMergeMaps(a.Problem.Context, b.Problem.Context)
	out.Strategy.Parameters = shallowMergeMaps(a.Strategy.Parameters, b.Strategy.Parameters)

	return out
}

func unionStrings(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func shallowMergeMaps(a, b map[string]interface{}) map[string]interface{} {
	if a == nil && b == nil {
		return nil
	}
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Stats reports running conflict/resolution statistics.
type Stats struct {
	ConflictsByType       map[types.ConflictType]int
	ResolutionsByStrategy map[types.ResolutionStrategy]int
	AverageResolutionMs   float64
	SuccessRate           float64
}

// Stats returns a snapshot of the resolver's running statistics.
func (r *Resolver) Stats() Stats {
	avg := 0.0
	successRate := 0.0
	if r.totalResolutions > 0 {
		avg = float64(r.totalResolutionTimeMs) / float64(r.totalResolutions)
		successRate = float64(r.successCount) / float64(r.totalResolutions)
	}
	return Stats{
		ConflictsByType:       copyConflictCounts(r.conflictsByType),
		ResolutionsByStrategy: copyStrategyCounts(r.resolutionsByStrategy),
		AverageResolutionMs:   avg,
		SuccessRate:           successRate,
	}
}

func copyConflictCounts(m map[types.ConflictType]int) map[types.ConflictType]int {
	out := make(map[types.ConflictType]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrategyCounts(m map[types.ResolutionStrategy]int) map[types.ResolutionStrategy]int {
	out := make(map[types.ResolutionStrategy]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
