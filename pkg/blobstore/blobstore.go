// Package blobstore implements the BlobStore capability: byte-level CRUD
// on named keys with directory-like prefix listing, the way
// pkg/storage's BoltStore gave the manager bucket-per-collection CRUD
// over typed records. Here the value is an opaque byte slice and the
// key is a full path string, so any caller-defined key hierarchy (reasoning-sessions/active/2024-01-01/...) fits without
// the store knowing about sessions, checkpoints, or any other domain
// concept above it.
package blobstore

import (
	"github.com/reasonchain/core/pkg/types"
)

// BlobStore is the storage capability required by every other
// component that persists bytes. Implementations must give
// read-after-write consistency on the same key and must not expose a
// partially written value after a crash mid-put.
type BlobStore interface {
	// Put writes key atomically, replacing any existing value.
	Put(key string, data []byte) error
	// Get reads key. Returns a *types.Error with KindNotFound if absent.
	Get(key string) ([]byte, error)
	// Delete removes key. Returns a *types.Error with KindNotFound if absent.
	Delete(key string) error
	// ListPrefix returns the ordered set of keys starting with prefix.
	ListPrefix(prefix string) ([]string, error)
	// EnsurePrefix is a no-op for stores with no directory entities of
	// their own; it exists so callers never need to branch on backend.
	EnsurePrefix(prefix string) error
	// CopyTree copies every key under src to the same suffix under dst.
	CopyTree(src, dst string) error
	// Close releases any resources held by the store.
	Close() error
}

const component = "blobstore"

func errNotFound(key string) error {
	return types.NewError(types.KindNotFound, component, "key not found: "+key)
}
