// Package stepexec defines the StepExecutor capability: the pluggable
// collaborator that actually performs the work a Step describes.
// ChainManager calls it synchronously with the caller's ctx and applies
// no step timeout of its own; nothing below C10 knows what a
// StepExecutor actually does.
package stepexec

import (
	"context"

	"github.com/reasonchain/core/pkg/types"
)

// Outcome is the result of executing one step.
type Outcome struct {
	OK      bool
	Outputs map[string]interface{}
	Errors  []string
}

// StepExecutor executes a single Step against a read-only snapshot of
// the state it belongs to. Implementations may be synchronous or
// asynchronous; the core waits for Execute to return, and any deadline
// is the one the caller put on ctx.
type StepExecutor interface {
	Execute(ctx context.Context, step *types.Step, contextSnapshot *types.ReasoningState) (Outcome, error)
}

// Func adapts a plain function to StepExecutor.
type Func func(ctx context.Context, step *types.Step, contextSnapshot *types.ReasoningState) (Outcome, error)

func (f Func) Execute(ctx context.Context, step *types.Step, contextSnapshot *types.ReasoningState) (Outcome, error) {
	return f(ctx, step, contextSnapshot)
}
