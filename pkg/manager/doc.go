// Package manager wires every component of the reasoning-chain session
// manager (blob storage, codec, validator, checkpoints, locking,
// client registry, conflict resolution, the event bus, and recovery)
// behind the ChainManager type, the single authority permitted to
// mutate a session's active ReasoningState.
package manager
