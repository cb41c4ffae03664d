// Package conflict implements ConflictResolver: three-way field/step/
// divergence detection between two clients' states over a common base,
// deterministic strategy selection by severity and type, and the
// merge/timestamp_based/client_priority/rollback/manual_intervention
// resolution semantics, with running statistics.
package conflict
