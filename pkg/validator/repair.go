package validator

import (
	"github.com/google/uuid"

	"github.com/reasonchain/core/pkg/types"
)

// Repair applies every repairable issue from report to a deep copy of s
// and returns the repaired state. Repair is idempotent: validating the
// result and repairing again must never increase the issue count.
func Repair(s *types.ReasoningState, report Report) *types.ReasoningState {
	out := s.Clone()

	for _, issue := range report.Issues {
		if !issue.CanRepair {
			continue
		}
		switch issue.RepairAction {
		case "generate_step_id":
			for _, step := range out.Steps {
				if step.ID == "" {
					step.ID = "step_" + uuid.NewString()
				}
			}
		case "reset_total_steps":
			out.TotalSteps = len(out.Steps)
			if out.TotalSteps < 0 {
				out.TotalSteps = 0
			}
		case "clamp_current_step":
			if out.CurrentStep < 0 {
				out.CurrentStep = 0
			}
			if out.CurrentStep > out.TotalSteps {
				out.CurrentStep = out.TotalSteps
			}
		case "clamp_confidence":
			for _, step := range out.Steps {
				if step.Confidence < 0 {
					step.Confidence = 0
				}
				if step.Confidence > 1 {
					step.Confidence = 1
				}
			}
		case "reindex":
			for i, step := range out.Steps {
				step.Index = i
			}
		case "drop_invalid_dependency":
			idToIndex := make(map[string]int, len(out.Steps))
			for i, step := range out.Steps {
				idToIndex[step.ID] = i
			}
			for idx, step := range out.Steps {
				kept := step.Dependencies[:0]
				for _, dep := range step.Dependencies {
					depIdx, ok := idToIndex[dep]
					if ok && depIdx < idx {
						kept = append(kept, dep)
					}
				}
				step.Dependencies = kept
			}
		}
	}

	return out
}
