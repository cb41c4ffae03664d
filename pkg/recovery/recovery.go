// Package recovery implements the RecoveryPlanner capability: a
// priority-ordered strategy ladder tried in order until one succeeds,
// grounded on the teacher's FSM Restore path (pkg/manager/fsm.go) for
// the "reload and revalidate" strategy and generalized to the full
// ladder described in the spec.
package recovery

import (
	"context"
	"time"

	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/checkpoint"
	"github.com/reasonchain/core/pkg/types"
)

const component = "recovery"

// RecoveryType classifies the kind of recovery a strategy performed.
type RecoveryType string

const (
	RecoveryFull                 RecoveryType = "full"
	RecoveryPartial               RecoveryType = "partial"
	RecoveryCheckpointRollback    RecoveryType = "checkpoint_rollback"
	RecoveryReconstructed         RecoveryType = "reconstructed"
	RecoveryMinimal               RecoveryType = "minimal"
)

// Context carries everything a strategy needs to attempt recovery.
type Context struct {
	SessionID    string
	Blobs        blobstore.BlobStore
	Checkpoints  *checkpoint.Store
	BlobKey      string
	LastKnown    *types.ReasoningState
}

// Result is the outcome of a recovery attempt.
type Result struct {
	OK           bool
	State        *types.ReasoningState
	Confidence   float64
	Issues       []string
	StrategyName string
	RecoveryType RecoveryType
	TimeMs       int64
}

// Strategy is one rung of the recovery ladder.
type Strategy interface {
	Name() string
	Priority() int
	CanHandle(ctx Context) bool
	Execute(ctx context.Context, rctx Context) (Result, error)
}

// Config tunes retry/backoff behavior shared by every strategy
// invocation.
type Config struct {
	MaxRetryAttempts  int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	Timeout           time.Duration
}

// DefaultConfig matches spec.md's configuration surface defaults.
func DefaultConfig() Config {
	return Config{MaxRetryAttempts: 3, RetryDelay: time.Second, BackoffMultiplier: 2, Timeout: 10 * time.Second}
}

// Planner runs the strategy ladder in descending priority order.
type Planner struct {
	strategies []Strategy
	cfg        Config
	nowFn      func() time.Time

	successEMA map[string]float64
}

const emaAlpha = 0.2

// New returns a Planner with strategies sorted by descending priority.
// Pass NewDefaultStrategies(codec) for the standard four-rung ladder.
func New(cfg Config, strategies ...Strategy) *Planner {
	p := &Planner{cfg: cfg, nowFn: time.Now, successEMA: make(map[string]float64)}
	p.strategies = append(p.strategies, strategies...)
	for i := 0; i < len(p.strategies); i++ {
		for j := i + 1; j < len(p.strategies); j++ {
			if p.strategies[j].Priority() > p.strategies[i].Priority() {
				p.strategies[i], p.strategies[j] = p.strategies[j], p.strategies[i]
			}
		}
	}
	return p
}

// Recover tries each applicable strategy in priority order, with
// bounded retries and exponential backoff, until one reports OK.
func (p *Planner) Recover(ctx context.Context, rctx Context) Result {
	for _, s := range p.strategies {
		if !s.CanHandle(rctx) {
			continue
		}
		result, ok := p.runWithRetry(ctx, s, rctx)
		p.updateEMA(s.Name(), ok)
		if ok {
			return result
		}
	}
	return Result{OK: false, StrategyName: "none", RecoveryType: RecoveryMinimal}
}

func (p *Planner) runWithRetry(ctx context.Context, s Strategy, rctx Context) (Result, bool) {
	delay := p.cfg.RetryDelay
	var last Result
	for attempt := 1; attempt <= p.cfg.MaxRetryAttempts; attempt++ {
		start := p.nowFn()
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		result, err := s.Execute(attemptCtx, rctx)
		cancel()
		result.TimeMs = p.nowFn().Sub(start).Milliseconds()
		result.StrategyName = s.Name()

		if err == nil && result.OK {
			return result, true
		}
		last = result
		if attemptCtx.Err() != nil {
			last.Issues = append(last.Issues, "timeout")
		}
		if attempt < p.cfg.MaxRetryAttempts {
			time.Sleep(scaleDuration(delay, p.cfg.BackoffMultiplier, attempt-1))
		}
	}
	return last, false
}

func scaleDuration(base time.Duration, mult float64, exp int) time.Duration {
	d := float64(base)
	for i := 0; i < exp; i++ {
		d *= mult
	}
	return time.Duration(d)
}

func (p *Planner) updateEMA(name string, success bool) {
	v := 0.0
	if success {
		v = 1.0
	}
	prev, ok := p.successEMA[name]
	if !ok {
		p.successEMA[name] = v
		return
	}
	p.successEMA[name] = emaAlpha*v + (1-emaAlpha)*prev
}

// SuccessRate returns the exponential-moving-average success rate for a
// named strategy.
func (p *Planner) SuccessRate(name string) float64 {
	return p.successEMA[name]
}
