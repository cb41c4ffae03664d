// Package validator implements the SessionValidator capability: a
// six-pass validation pipeline over a ReasoningState that produces
// ValidationIssue records, a 0-100 health score, and an idempotent
// auto-repair pass. Grounded on the teacher's health-checking style in
// pkg/metrics/health.go (component checks feeding a rolled-up status),
// generalized from process health to reasoning-state health.
package validator

import (
	"fmt"

	"github.com/reasonchain/core/pkg/types"
)

// Severity classifies a ValidationIssue.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// ValidationIssue describes one problem found in a pass.
type ValidationIssue struct {
	Severity     Severity
	Category     string
	Code         string
	Location     string
	CanRepair    bool
	RepairAction string
}

// Status buckets a health score into a coarse classification.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusWarning   Status = "warning"
	StatusCritical  Status = "critical"
	StatusCorrupted Status = "corrupted"
)

// Report is the outcome of running the validation pipeline.
type Report struct {
	Issues      []ValidationIssue
	HealthScore int
	Status      Status
}

// HasCritical reports whether the report contains any critical issue.
func (r Report) HasCritical() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Validator runs the six-pass pipeline against a ReasoningState.
type Validator struct{}

// New returns a ready-to-use Validator. It is stateless; one instance
// can be shared across goroutines.
func New() *Validator {
	return &Validator{}
}

// Validate runs all six passes and returns a Report.
func (v *Validator) Validate(s *types.ReasoningState) Report {
	var issues []ValidationIssue
	issues = append(issues, checkStructure(s)...)
	issues = append(issues, checkDataIntegrity(s)...)
	issues = append(issues, checkDependencies(s)...)
	issues = append(issues, checkConsistency(s)...)
	issues = append(issues, checkPerformance(s)...)
	issues = append(issues, checkDeep(s)...)

	score := scoreIssues(issues)
	return Report{
		Issues:      issues,
		HealthScore: score,
		Status:      statusFor(score),
	}
}

func scoreIssues(issues []ValidationIssue) int {
	score := 100
	for _, i := range issues {
		switch i.Severity {
		case SeverityCritical:
			score -= 25
		case SeverityError:
			score -= 15
		case SeverityWarning:
			score -= 5
		case SeverityInfo:
			score -= 1
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func statusFor(score int) Status {
	switch {
	case score >= 80:
		return StatusHealthy
	case score >= 60:
		return StatusWarning
	case score >= 40:
		return StatusCritical
	default:
		return StatusCorrupted
	}
}

// --- Pass 1: Structure ---

func checkStructure(s *types.ReasoningState) []ValidationIssue {
	var issues []ValidationIssue
	if s == nil {
		return []ValidationIssue{{Severity: SeverityCritical, Category: "structure", Code: "nil_state"}}
	}
	if s.ID == "" {
		issues = append(issues, ValidationIssue{Severity: SeverityCritical, Category: "structure", Code: "missing_id"})
	}
	if s.Problem.Description == "" {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "structure", Code: "missing_problem_description"})
	}
	if s.Strategy.Name == "" {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "structure", Code: "missing_strategy"})
	}
	if s.CurrentStep < 0 || s.CurrentStep > s.TotalSteps {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError, Category: "structure", Code: "current_step_out_of_range",
			CanRepair: true, RepairAction: "clamp_current_step",
		})
	}
	if s.TotalSteps < 0 {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "structure", Code: "negative_total_steps", CanRepair: true, RepairAction: "reset_total_steps"})
	}
	return issues
}

// --- Pass 2: DataIntegrity ---

func checkDataIntegrity(s *types.ReasoningState) []ValidationIssue {
	var issues []ValidationIssue
	if s == nil {
		return nil
	}
	seen := make(map[string]bool)
	for idx, step := range s.Steps {
		loc := fmt.Sprintf("steps[%d]", idx)
		if step.ID == "" {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "data_integrity", Code: "missing_step_id", Location: loc, CanRepair: true, RepairAction: "generate_step_id"})
		} else if seen[step.ID] {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "data_integrity", Code: "duplicate_step_id", Location: loc})
		}
		seen[step.ID] = true

		if step.Description == "" {
			issues = append(issues, ValidationIssue{Severity: SeverityWarning, Category: "data_integrity", Code: "empty_step_description", Location: loc})
		}
		if step.Confidence < 0 || step.Confidence > 1 {
			issues = append(issues, ValidationIssue{Severity: SeverityWarning, Category: "data_integrity", Code: "confidence_out_of_range", Location: loc, CanRepair: true, RepairAction: "clamp_confidence"})
		}
		if step.Index != idx {
			issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "data_integrity", Code: "index_mismatch", Location: loc, CanRepair: true, RepairAction: "reindex"})
		}
	}
	return issues
}

// --- Pass 3: Dependencies ---

func checkDependencies(s *types.ReasoningState) []ValidationIssue {
	var issues []ValidationIssue
	if s == nil {
		return nil
	}
	idToIndex := make(map[string]int, len(s.Steps))
	for i, step := range s.Steps {
		idToIndex[step.ID] = i
	}

	for idx, step := range s.Steps {
		loc := fmt.Sprintf("steps[%d]", idx)
		for _, dep := range step.Dependencies {
			depIdx, ok := idToIndex[dep]
			if !ok {
				issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "dependencies", Code: "dangling_dependency", Location: loc, CanRepair: true, RepairAction: "drop_invalid_dependency"})
				continue
			}
			if depIdx >= idx {
				issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "dependencies", Code: "forward_dependency", Location: loc, CanRepair: true, RepairAction: "drop_invalid_dependency"})
			}
		}
	}

	if hasCycle(s.Steps) {
		issues = append(issues, ValidationIssue{Severity: SeverityCritical, Category: "dependencies", Code: "dependency_cycle"})
	}
	return issues
}

// hasCycle runs DFS with visited + recursion-stack tracking over the
// dependency graph.
func hasCycle(steps []*types.Step) bool {
	byID := make(map[string]*types.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var visit func(id string) bool
	visit = func(id string) bool {
		if onStack[id] {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		onStack[id] = true
		if step, ok := byID[id]; ok {
			for _, dep := range step.Dependencies {
				if visit(dep) {
					return true
				}
			}
		}
		onStack[id] = false
		return false
	}

	for _, s := range steps {
		if visit(s.ID) {
			return true
		}
	}
	return false
}

// --- Pass 4: Consistency ---

func checkConsistency(s *types.ReasoningState) []ValidationIssue {
	var issues []ValidationIssue
	if s == nil {
		return nil
	}
	if s.TotalSteps != len(s.Steps) {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "consistency", Code: "total_steps_mismatch", CanRepair: true, RepairAction: "reset_total_steps"})
	}
	if s.CurrentStep > s.TotalSteps {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Category: "consistency", Code: "current_step_exceeds_total", CanRepair: true, RepairAction: "clamp_current_step"})
	}
	return issues
}

// --- Pass 5: Performance (informational) ---

const (
	largeStepCountThreshold  = 500
	largeStepPayloadThreshold = 32 * 1024
)

func checkPerformance(s *types.ReasoningState) []ValidationIssue {
	var issues []ValidationIssue
	if s == nil {
		return nil
	}
	if len(s.Steps) > largeStepCountThreshold {
		issues = append(issues, ValidationIssue{Severity: SeverityInfo, Category: "performance", Code: "large_step_count"})
	}
	for idx, step := range s.Steps {
		if approxSize(step.Outputs)+approxSize(step.Inputs) > largeStepPayloadThreshold {
			issues = append(issues, ValidationIssue{Severity: SeverityInfo, Category: "performance", Code: "large_step_payload", Location: fmt.Sprintf("steps[%d]", idx)})
		}
	}
	return issues
}

func approxSize(m map[string]interface{}) int {
	n := 0
	for k, v := range m {
		n += len(k)
		n += len(fmt.Sprint(v))
	}
	return n
}

// --- Pass 6: Deep ---

func checkDeep(s *types.ReasoningState) []ValidationIssue {
	var issues []ValidationIssue
	if s == nil {
		return nil
	}
	switch s.Problem.Complexity {
	case types.ComplexitySimple, types.ComplexityModerate, types.ComplexityComplex, types.ComplexityExpert, "":
	default:
		issues = append(issues, ValidationIssue{Severity: SeverityWarning, Category: "deep", Code: "unknown_complexity"})
	}
	switch s.Strategy.Type {
	case types.StrategyTypeHierarchical, types.StrategyTypeSequential, types.StrategyTypeParallel, types.StrategyTypeAdaptive, "":
	default:
		issues = append(issues, ValidationIssue{Severity: SeverityWarning, Category: "deep", Code: "unknown_strategy_type"})
	}
	return issues
}
