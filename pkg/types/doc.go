// Package types holds the data structures and error taxonomy shared by
// every component of the session manager: ReasoningState and its Steps
// and Checkpoints, SessionMetadata, ClientSession, Lock, and Conflict.
//
// Nothing in this package talks to storage, the network, or a clock; it
// exists so that pkg/blobstore, pkg/codec, pkg/manager, and the rest can
// agree on one vocabulary without importing each other.
package types
