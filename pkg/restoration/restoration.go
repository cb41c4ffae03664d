// Package restoration implements the RestorationPlanner capability:
// prioritized, staged recovery of sessions at startup. Grounded on the
// teacher's reconciler (pkg/reconciler/reconciler.go)'s ticker-driven
// staged convergence loop and its zerolog structured-chain logging
// style, generalized from a single reconciliation cycle to a
// three-stage priority ladder run once at startup.
package restoration

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reasonchain/core/pkg/types"
	"github.com/reasonchain/core/pkg/validator"
)

const component = "restoration"

// Stage buckets a session by its computed priority score.
type Stage string

const (
	StageHigh   Stage = "high"
	StageMedium Stage = "medium"
	StageLow    Stage = "low"
)

func stageFor(score float64) Stage {
	switch {
	case score >= 80:
		return StageHigh
	case score >= 50:
		return StageMedium
	default:
		return StageLow
	}
}

// Candidate is a session eligible for restoration, with the inputs
// needed to compute its priority score.
type Candidate struct {
	SessionID      string
	LastActivity   time.Time
	PreCheckHealth float64 // 0-100, from a cheap pre-check
	Complexity     float64 // 0-100
	Dependencies   float64 // 0-100
	UserPriority   float64 // 0-100
}

// Score computes the weighted priority score from spec.md section 4.11.
func (c Candidate) Score(now time.Time) float64 {
	activity := activityScore(now.Sub(c.LastActivity))
	return 0.30*activity + 0.25*c.PreCheckHealth + 0.15*c.Complexity + 0.15*c.Dependencies + 0.15*c.UserPriority
}

func activityScore(age time.Duration) float64 {
	switch {
	case age <= time.Hour:
		return 100
	case age <= 6*time.Hour:
		return 80
	case age <= 24*time.Hour:
		return 60
	case age <= 168*time.Hour:
		return 40
	default:
		return 20
	}
}

// LoadFunc loads a persisted session's ReasoningState.
type LoadFunc func(ctx context.Context, sessionID string) (*types.ReasoningState, error)

// RecoverFunc runs the recovery ladder for a session whose health is
// below threshold.
type RecoverFunc func(ctx context.Context, sessionID string, state *types.ReasoningState) (*types.ReasoningState, error)

// SessionResult is the per-session outcome of a restoration attempt.
type SessionResult struct {
	SessionID string
	OK        bool
	Repaired  bool
	Recovered bool
	HealthScore int
	Err       error
}

// StageReport summarizes one executed stage.
type StageReport struct {
	Stage      Stage
	SessionIDs []string
	Results    []SessionResult
}

// Report summarizes the full restoration plan.
type Report struct {
	Stages                []StageReport
	SuccessfulRestorations int
	FailedRestorations     int
	Aborted                bool
}

// Config tunes the planner.
type Config struct {
	MaxConcurrentRestorations int
	HealthScoreThreshold      int
}

// DefaultConfig matches spec.md's configuration surface defaults.
func DefaultConfig() Config {
	return Config{MaxConcurrentRestorations: 3, HealthScoreThreshold: 40}
}

// Planner restores sessions at startup.
type Planner struct {
	cfg     Config
	load    LoadFunc
	recover RecoverFunc
	log     zerolog.Logger
	nowFn   func() time.Time
}

// New returns a Planner.
func New(cfg Config, load LoadFunc, recover RecoverFunc, log zerolog.Logger) *Planner {
	return &Planner{cfg: cfg, load: load, recover: recover, log: log, nowFn: time.Now}
}

// Restore partitions candidates into stages by score, runs each stage
// to completion in priority order (high, medium, low) with bounded
// concurrency within a stage, and aborts if the running failure ratio
// exceeds 0.5 with more than 5 absolute failures.
func (p *Planner) Restore(ctx context.Context, candidates []Candidate) Report {
	now := p.nowFn()
	var high, medium, low []Candidate
	for _, c := range candidates {
		switch stageFor(c.Score(now)) {
		case StageHigh:
			high = append(high, c)
		case StageMedium:
			medium = append(medium, c)
		default:
			low = append(low, c)
		}
	}

	report := Report{}
	for _, stageGroup := range []struct {
		stage Stage
		items []Candidate
	}{
		{StageHigh, high}, {StageMedium, medium}, {StageLow, low},
	} {
		if report.Aborted {
			break
		}
		sr := p.runStage(ctx, stageGroup.stage, stageGroup.items)
		report.Stages = append(report.Stages, sr)
		for _, r := range sr.Results {
			if r.OK {
				report.SuccessfulRestorations++
			} else {
				report.FailedRestorations++
			}
		}
		total := report.SuccessfulRestorations + report.FailedRestorations
		if total > 0 {
			ratio := float64(report.FailedRestorations) / float64(total)
			if ratio > 0.5 && report.FailedRestorations > 5 {
				report.Aborted = true
				p.log.Warn().Int("failures", report.FailedRestorations).Msg("restoration aborted: failure ratio exceeded")
			}
		}
	}
	return report
}

func (p *Planner) runStage(ctx context.Context, stage Stage, candidates []Candidate) StageReport {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.SessionID
	}
	sort.Strings(ids)

	results := make([]SessionResult, len(candidates))
	maxConcurrent := p.cfg.MaxConcurrentRestorations
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, c := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, c Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.restoreOne(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return StageReport{Stage: stage, SessionIDs: ids, Results: results}
}

func (p *Planner) restoreOne(ctx context.Context, c Candidate) SessionResult {
	state, err := p.load(ctx, c.SessionID)
	if err != nil {
		return SessionResult{SessionID: c.SessionID, OK: false, Err: err}
	}

	v := validator.New()
	report := v.Validate(state)
	repaired := false
	if report.HealthScore >= 40 && report.HealthScore < 80 {
		hasRepairable := false
		for _, i := range report.Issues {
			if i.CanRepair {
				hasRepairable = true
				break
			}
		}
		if hasRepairable {
			state = validator.Repair(state, report)
			report = v.Validate(state)
			repaired = true
		}
	}

	recovered := false
	if report.HealthScore < p.cfg.HealthScoreThreshold && p.recover != nil {
		newState, err := p.recover(ctx, c.SessionID, state)
		if err == nil && newState != nil {
			state = newState
			recovered = true
			report = v.Validate(state)
		}
	}

	finalReport := v.Validate(state)
	return SessionResult{
		SessionID:   c.SessionID,
		OK:          !finalReport.HasCritical(),
		Repaired:    repaired,
		Recovered:   recovered,
		HealthScore: finalReport.HealthScore,
	}
}
