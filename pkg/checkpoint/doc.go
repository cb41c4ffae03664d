// Package checkpoint implements CheckpointStore: append-only, per-session
// checkpoint history over a BlobStore, trimmed to a bounded retention
// window and ordered monotonically by timestamp so that restore always
// recovers a coherent (currentStep, steps) pair.
package checkpoint
