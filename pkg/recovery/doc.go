// Package recovery implements RecoveryPlanner: a priority-ordered
// strategy ladder (full, checkpoint_rollback, partial_reconstruction,
// minimal), each retried with exponential backoff under a per-attempt
// timeout, with an exponential-moving-average success rate tracked per
// strategy for monitoring.
package recovery
