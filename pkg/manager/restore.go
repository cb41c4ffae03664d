package manager

import (
	"context"
	"strings"
	"time"

	"github.com/reasonchain/core/pkg/restoration"
	"github.com/reasonchain/core/pkg/types"
)

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ListSessions returns metadata for every persisted session, active or
// not, by scanning the metadata/ prefix rather than the in-memory set.
func (m *ChainManager) ListSessions(ctx context.Context) ([]*types.SessionMetadata, error) {
	keys, err := m.blobs.ListPrefix("metadata/")
	if err != nil {
		return nil, err
	}
	out := make([]*types.SessionMetadata, 0, len(keys))
	for _, key := range keys {
		data, err := m.blobs.Get(key)
		if err != nil {
			continue
		}
		meta, err := unmarshalMetadata(data)
		if err != nil {
			m.log.Warn().Str("key", key).Err(err).Msg("skipping corrupt session metadata")
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// complexityScore maps a problem's declared complexity onto the 0-100
// scale restoration.Candidate expects.
func complexityScore(c types.Complexity) float64 {
	switch c {
	case types.ComplexitySimple:
		return 20
	case types.ComplexityModerate:
		return 50
	case types.ComplexityComplex:
		return 75
	case types.ComplexityExpert:
		return 95
	default:
		return 50
	}
}

// RestoreAll runs the startup restoration ladder over every non-terminal
// persisted session: it loads each one, validates and auto-repairs cheap
// issues, and escalates to the recovery ladder when the health score
// stays below threshold, in priority order (recent/healthy/simple first).
func (m *ChainManager) RestoreAll(ctx context.Context) (restoration.Report, error) {
	metas, err := m.ListSessions(ctx)
	if err != nil {
		return restoration.Report{}, err
	}

	candidates := make([]restoration.Candidate, 0, len(metas))
	for _, meta := range metas {
		if meta.Status == types.SessionArchived {
			continue
		}
		state, loadErr := m.Load(ctx, meta.ID)
		preCheck := 60.0
		complexity := complexityScoreFromSummary(meta.ProblemSummary)
		if loadErr == nil {
			report := m.validator.Validate(state)
			preCheck = float64(report.HealthScore)
			complexity = complexityScore(state.Problem.Complexity)
		}
		candidates = append(candidates, restoration.Candidate{
			SessionID:      meta.ID,
			LastActivity:   msToTime(meta.LastActivity),
			PreCheckHealth: preCheck,
			Complexity:     complexity,
			Dependencies:   50,
			UserPriority:   50,
		})
	}

	planner := restoration.New(m.cfg.RestorationConfig, m.loadForRestore, m.recoverForRestore, m.log)
	return planner.Restore(ctx, candidates), nil
}

func (m *ChainManager) loadForRestore(ctx context.Context, sessionID string) (*types.ReasoningState, error) {
	return m.Load(ctx, sessionID)
}

func (m *ChainManager) recoverForRestore(ctx context.Context, sessionID string, state *types.ReasoningState) (*types.ReasoningState, error) {
	result, err := m.Recover(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return result.State, nil
}

// complexityScoreFromSummary is a placeholder heuristic used when only
// the metadata sidecar (not the full state) is available: it looks for
// complexity markers the problem summary was built from. RestoreAll
// uses the loaded state's Problem.Complexity whenever Load succeeds, so
// this only applies to sessions whose state could not be loaded.
func complexityScoreFromSummary(summary string) float64 {
	lower := strings.ToLower(summary)
	switch {
	case strings.Contains(lower, "expert"):
		return 95
	case strings.Contains(lower, "complex"):
		return 75
	case strings.Contains(lower, "simple"):
		return 20
	default:
		return 50
	}
}
