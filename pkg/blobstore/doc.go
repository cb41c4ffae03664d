// Package blobstore provides the BlobStore capability used by every
// component that persists bytes: put/get/delete on a key, prefix
// listing for directory-like enumeration, and copyTree for backups.
//
// BoltStore is the default, durable implementation (go.etcd.io/bbolt).
// MemoryStore is a map-backed implementation for tests. Neither
// implementation knows about sessions, checkpoints, or any other
// domain concept defined above this package.
package blobstore
