// Package lock implements LockManager: a compatibility matrix over
// read/write/exclusive locks scoped to full_session/step_execution/
// metadata_only, a FIFO per-session wait queue, TTL-based expiry, and a
// periodic cleanup sweep that drops expired locks and evicts idle
// clients.
package lock
