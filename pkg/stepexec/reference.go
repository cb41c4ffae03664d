package stepexec

import (
	"context"

	"github.com/reasonchain/core/pkg/types"
)

// Reference is an in-memory StepExecutor used by tests: it marks every
// step as successful immediately, echoing its inputs as outputs unless
// the step id is listed in Fail.
type Reference struct {
	Fail map[string]bool
}

// NewReference returns a Reference executor with no forced failures.
func NewReference() *Reference {
	return &Reference{Fail: make(map[string]bool)}
}

func (r *Reference) Execute(ctx context.Context, step *types.Step, contextSnapshot *types.ReasoningState) (Outcome, error) {
	if r.Fail[step.ID] {
		return Outcome{OK: false, Errors: []string{"forced failure for " + step.ID}}, nil
	}
	outputs := make(map[string]interface{}, len(step.Inputs))
	for k, v := range step.Inputs {
		outputs[k] = v
	}
	return Outcome{OK: true, Outputs: outputs}, nil
}
