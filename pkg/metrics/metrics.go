// Package metrics exposes the Prometheus surface for a running
// reasonchain-core process: gauges/histograms/counters for session
// lifecycle, lock contention, conflict resolution, validation health,
// and startup restoration, plus the health/readiness/liveness endpoints
// used by an orchestrator's probes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session metrics
	ActiveSessions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reasonchain_active_sessions",
			Help: "Number of sessions currently held in the active set, by status",
		},
		[]string{"status"},
	)

	SessionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reasonchain_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reasonchain_sessions_completed_total",
			Help: "Total number of sessions that reached completion",
		},
	)

	StepExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reasonchain_step_execution_duration_seconds",
			Help:    "Time taken to execute a single reasoning step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	StepsExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_steps_executed_total",
			Help: "Total number of steps executed, by outcome",
		},
		[]string{"outcome"},
	)

	// Validation metrics
	HealthScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reasonchain_health_score",
			Help:    "Distribution of session health scores (0-100)",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	ValidationIssuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_validation_issues_total",
			Help: "Total number of validation issues found, by severity",
		},
		[]string{"severity"},
	)

	RepairsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_repairs_applied_total",
			Help: "Total number of auto-repair actions applied, by action",
		},
		[]string{"action"},
	)

	// Lock metrics
	LockQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reasonchain_lock_queue_depth",
			Help: "Number of clients waiting for a lock, by session",
		},
		[]string{"session_id"},
	)

	LockAcquisitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_lock_acquisitions_total",
			Help: "Total number of lock acquisition attempts, by type and result",
		},
		[]string{"lock_type", "result"},
	)

	LockHoldDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reasonchain_lock_hold_duration_seconds",
			Help:    "Time a lock was held between acquire and release",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"lock_type"},
	)

	// Conflict metrics
	ConflictsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_conflicts_detected_total",
			Help: "Total number of conflicts detected, by severity",
		},
		[]string{"severity"},
	)

	ConflictResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_conflict_resolutions_total",
			Help: "Total number of conflicts resolved, by strategy",
		},
		[]string{"strategy"},
	)

	// Recovery and restoration metrics
	RecoveryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_recovery_attempts_total",
			Help: "Total number of recovery strategy attempts, by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	RestorationStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reasonchain_restoration_stage_duration_seconds",
			Help:    "Time taken to run one startup restoration stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	RestorationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_restorations_total",
			Help: "Total number of startup restoration attempts, by result",
		},
		[]string{"result"},
	)

	// Event bus metrics
	EventsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reasonchain_events_emitted_total",
			Help: "Total number of events emitted, by type",
		},
		[]string{"event_type"},
	)

	EventHandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reasonchain_event_handler_duration_seconds",
			Help:    "Time taken by a single event handler invocation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	// Client/registry metrics
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reasonchain_connected_clients",
			Help: "Number of clients currently registered across all sessions",
		},
	)

	// Checkpoint metrics
	CheckpointsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reasonchain_checkpoints_total",
			Help: "Total number of checkpoints written",
		},
	)
)

func init() {
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(SessionsCreatedTotal)
	prometheus.MustRegister(SessionsCompletedTotal)
	prometheus.MustRegister(StepExecutionDuration)
	prometheus.MustRegister(StepsExecutedTotal)
	prometheus.MustRegister(HealthScore)
	prometheus.MustRegister(ValidationIssuesTotal)
	prometheus.MustRegister(RepairsAppliedTotal)
	prometheus.MustRegister(LockQueueDepth)
	prometheus.MustRegister(LockAcquisitionsTotal)
	prometheus.MustRegister(LockHoldDuration)
	prometheus.MustRegister(ConflictsDetectedTotal)
	prometheus.MustRegister(ConflictResolutionsTotal)
	prometheus.MustRegister(RecoveryAttemptsTotal)
	prometheus.MustRegister(RestorationStageDuration)
	prometheus.MustRegister(RestorationsTotal)
	prometheus.MustRegister(EventsEmittedTotal)
	prometheus.MustRegister(EventHandlerDuration)
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(CheckpointsTotal)
}

// Handler returns the HTTP handler serving the Prometheus exposition
// format at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
