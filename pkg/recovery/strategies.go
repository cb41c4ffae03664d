package recovery

import (
	"context"

	"github.com/reasonchain/core/pkg/codec"
	"github.com/reasonchain/core/pkg/types"
	"github.com/reasonchain/core/pkg/validator"
)

// NewDefaultStrategies returns the standard four-rung ladder described
// in spec.md section 4.5: full, checkpoint_rollback,
// partial_reconstruction, minimal.
func NewDefaultStrategies(c *codec.Codec) []Strategy {
	return []Strategy{
		&fullStrategy{codec: c},
		&checkpointRollbackStrategy{},
		&partialReconstructionStrategy{},
		&minimalStrategy{},
	}
}

// --- full (priority 100) ---

type fullStrategy struct {
	codec *codec.Codec
}

func (s *fullStrategy) Name() string   { return "full" }
func (s *fullStrategy) Priority() int  { return 100 }

func (s *fullStrategy) CanHandle(ctx Context) bool {
	if ctx.Blobs == nil || ctx.BlobKey == "" {
		return false
	}
	_, err := ctx.Blobs.Get(ctx.BlobKey)
	return err == nil
}

func (s *fullStrategy) Execute(_ context.Context, rctx Context) (Result, error) {
	data, err := rctx.Blobs.Get(rctx.BlobKey)
	if err != nil {
		return Result{OK: false}, err
	}
	state, err := s.codec.Decode(data)
	if err != nil {
		return Result{OK: false, Issues: []string{err.Error()}}, err
	}
	report := validator.New().Validate(state)
	if report.HasCritical() {
		return Result{OK: false, State: state, Issues: issueCodes(report), RecoveryType: RecoveryFull}, nil
	}
	return Result{OK: true, State: state, Confidence: 0.95, RecoveryType: RecoveryFull, Issues: issueCodes(report)}, nil
}

// --- checkpoint_rollback (priority 80) ---

type checkpointRollbackStrategy struct{}

func (s *checkpointRollbackStrategy) Name() string  { return "checkpoint_rollback" }
func (s *checkpointRollbackStrategy) Priority() int { return 80 }

func (s *checkpointRollbackStrategy) CanHandle(ctx Context) bool {
	if ctx.Checkpoints == nil {
		return false
	}
	list, err := ctx.Checkpoints.List(ctx.SessionID)
	return err == nil && len(list) > 0
}

func (s *checkpointRollbackStrategy) Execute(_ context.Context, rctx Context) (Result, error) {
	latest, err := rctx.Checkpoints.Latest(rctx.SessionID)
	if err != nil {
		return Result{OK: false}, err
	}
	base := rctx.LastKnown
	if base == nil {
		base = &types.ReasoningState{ID: rctx.SessionID}
	}
	restored, err := rctx.Checkpoints.RestoreFromCheckpoint(base, rctx.SessionID, latest.ID)
	if err != nil {
		return Result{OK: false}, err
	}

	list, _ := rctx.Checkpoints.List(rctx.SessionID)
	coverage := 1.0
	if base.TotalSteps > 0 {
		coverage = float64(latest.StepIndex+1) / float64(base.TotalSteps)
		if coverage > 1 {
			coverage = 1
		}
	}
	confidence := 0.9 * coverage
	_ = list

	report := validator.New().Validate(restored)
	return Result{
		OK:           !report.HasCritical(),
		State:        restored,
		Confidence:   confidence,
		RecoveryType: RecoveryCheckpointRollback,
		Issues:       issueCodes(report),
	}, nil
}

// --- partial_reconstruction (priority 60) ---

type partialReconstructionStrategy struct{}

func (s *partialReconstructionStrategy) Name() string  { return "partial_reconstruction" }
func (s *partialReconstructionStrategy) Priority() int { return 60 }

func (s *partialReconstructionStrategy) CanHandle(ctx Context) bool {
	return ctx.LastKnown != nil
}

func (s *partialReconstructionStrategy) Execute(_ context.Context, rctx Context) (Result, error) {
	v := validator.New()
	report := v.Validate(rctx.LastKnown)
	repaired := validator.Repair(rctx.LastKnown, report)
	repairCount := countRepairable(report)

	confidence := 0.5 + 0.05*float64(repairCount)
	if confidence > 0.95 {
		confidence = 0.95
	}

	finalReport := v.Validate(repaired)
	return Result{
		OK:           !finalReport.HasCritical(),
		State:        repaired,
		Confidence:   confidence,
		RecoveryType: RecoveryReconstructed,
		Issues:       issueCodes(finalReport),
	}, nil
}

func countRepairable(r validator.Report) int {
	n := 0
	for _, i := range r.Issues {
		if i.CanRepair {
			n++
		}
	}
	return n
}

// --- minimal (priority 20) ---

type minimalStrategy struct{}

func (s *minimalStrategy) Name() string  { return "minimal" }
func (s *minimalStrategy) Priority() int { return 20 }

func (s *minimalStrategy) CanHandle(ctx Context) bool { return true }

func (s *minimalStrategy) Execute(_ context.Context, rctx Context) (Result, error) {
	id := rctx.SessionID
	if rctx.LastKnown != nil && rctx.LastKnown.ID != "" {
		id = rctx.LastKnown.ID
	}
	placeholder := &types.ReasoningState{
		ID: id,
		Problem: types.Problem{
			Description: "recovered placeholder",
			GoalState:   "unknown",
			Complexity:  types.ComplexitySimple,
		},
		Strategy: types.Strategy{Name: types.StrategyIncremental, Type: types.StrategyTypeSequential},
		Steps: []*types.Step{
			{ID: "recovery-placeholder", Index: 0, Description: "placeholder step after minimal recovery", Status: types.StepPending, Confidence: 0},
		},
		CurrentStep: 0,
		TotalSteps:  1,
	}
	return Result{OK: true, State: placeholder, Confidence: 0.3, RecoveryType: RecoveryMinimal}, nil
}

func issueCodes(r validator.Report) []string {
	out := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		out = append(out, i.Code)
	}
	return out
}
