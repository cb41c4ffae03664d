package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reasonchain/core/pkg/types"
	"github.com/reasonchain/core/pkg/validator"
)

func healthyState() *types.ReasoningState {
	return &types.ReasoningState{
		ID:      "reasoning-abc-00000001",
		Problem: types.Problem{Description: "d", GoalState: "g", Complexity: types.ComplexitySimple},
		Strategy: types.Strategy{Name: types.StrategyTopDown, Type: types.StrategyTypeSequential},
		Steps: []*types.Step{
			{ID: "s0", Index: 0, Description: "step0", Status: types.StepCompleted, Confidence: 0.9},
			{ID: "s1", Index: 1, Description: "step1", Dependencies: []string{"s0"}, Status: types.StepPending, Confidence: 0.5},
		},
		CurrentStep: 1,
		TotalSteps:  2,
	}
}

func TestValidateHealthyState(t *testing.T) {
	v := validator.New()
	report := v.Validate(healthyState())
	assert.Equal(t, validator.StatusHealthy, report.Status)
	assert.Equal(t, 100, report.HealthScore)
}

func TestDetectsDependencyCycle(t *testing.T) {
	s := healthyState()
	s.Steps[0].Dependencies = []string{"s1"}
	v := validator.New()
	report := v.Validate(s)
	assert.True(t, report.HasCritical())
}

func TestDetectsForwardDependencyAsInvalid(t *testing.T) {
	s := healthyState()
	s.Steps[0].Dependencies = []string{"s1"}
	s.Steps[1].Dependencies = nil
	v := validator.New()
	report := v.Validate(s)
	found := false
	for _, i := range report.Issues {
		if i.Code == "forward_dependency" || i.Code == "dependency_cycle" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDetectsIndexMismatch(t *testing.T) {
	s := healthyState()
	s.Steps[1].Index = 5
	v := validator.New()
	report := v.Validate(s)
	found := false
	for _, i := range report.Issues {
		if i.Code == "index_mismatch" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRepairIsIdempotent(t *testing.T) {
	s := healthyState()
	s.Steps[1].Index = 5
	s.TotalSteps = 99
	s.CurrentStep = 99
	v := validator.New()

	firstReport := v.Validate(s)
	repaired := validator.Repair(s, firstReport)
	secondReport := v.Validate(repaired)
	secondCount := len(secondReport.Issues)
	repairedAgain := validator.Repair(repaired, secondReport)
	thirdReport := v.Validate(repairedAgain)

	assert.LessOrEqual(t, len(thirdReport.Issues), secondCount)
}

func TestScoreFloorsAtZero(t *testing.T) {
	// No id, problem or strategy, out-of-range currentStep, and two
	// steps with no id, no description and a wrong index: the raw
	// penalty (170) exceeds 100, so the score must floor at 0.
	s := &types.ReasoningState{CurrentStep: 5, Steps: []*types.Step{{Index: 3}, {Index: 7}}}
	v := validator.New()
	report := v.Validate(s)
	assert.GreaterOrEqual(t, report.HealthScore, 0)
	assert.Equal(t, validator.StatusCorrupted, report.Status)
}
