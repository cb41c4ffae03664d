// Package checkpoint implements the CheckpointStore capability:
// write-ahead checkpoints keyed by session, bounded to the last K
// entries, grounded on the teacher's BoltStore bucket-per-collection
// layout (pkg/storage/boltdb.go) with the collection keyed by session
// id instead of a fixed entity kind.
package checkpoint

import (
	"encoding/json"
	"sort"

	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/types"
)

const component = "checkpoint"

// DefaultRetention is the default number of checkpoints kept per
// session (K in spec terms).
const DefaultRetention = 10

func keyPrefix(sessionID string) string {
	return "checkpoints/" + sessionID + "/"
}

func key(sessionID, checkpointID string) string {
	return keyPrefix(sessionID) + checkpointID
}

// Store persists Checkpoint records through a BlobStore, one blob per
// checkpoint, trimmed to Retention entries on every Append.
type Store struct {
	blobs     blobstore.BlobStore
	retention int
}

// New returns a Store backed by blobs, retaining at most retention
// checkpoints per session (DefaultRetention if retention <= 0).
func New(blobs blobstore.BlobStore, retention int) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{blobs: blobs, retention: retention}
}

// Append persists checkpoint for sessionID and trims the session's
// checkpoint history to the configured retention, dropping the oldest
// entries first.
func (s *Store) Append(sessionID string, cp *types.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return types.Wrap(types.KindInternal, component, "failed to marshal checkpoint", err)
	}
	if err := s.blobs.Put(key(sessionID, cp.ID), data); err != nil {
		return err
	}
	return s.trim(sessionID)
}

// trim keeps only the retention most recent checkpoints by timestamp.
func (s *Store) trim(sessionID string) error {
	all, err := s.list(sessionID)
	if err != nil {
		return err
	}
	if len(all) <= s.retention {
		return nil
	}
	toDrop := all[:len(all)-s.retention]
	for _, cp := range toDrop {
		if err := s.blobs.Delete(key(sessionID, cp.ID)); err != nil {
			return err
		}
	}
	return nil
}

// list returns every checkpoint for sessionID ordered by timestamp
// ascending (monotonic checkpoint ordering).
func (s *Store) list(sessionID string) ([]*types.Checkpoint, error) {
	keys, err := s.blobs.ListPrefix(keyPrefix(sessionID))
	if err != nil {
		return nil, err
	}
	out := make([]*types.Checkpoint, 0, len(keys))
	for _, k := range keys {
		data, err := s.blobs.Get(k)
		if err != nil {
			return nil, err
		}
		var cp types.Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			return nil, types.Wrap(types.KindCorrupt, component, "failed to parse checkpoint "+k, err)
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// List returns every checkpoint for sessionID ordered by timestamp
// ascending.
func (s *Store) List(sessionID string) ([]*types.Checkpoint, error) {
	return s.list(sessionID)
}

// Latest returns the most recent checkpoint for sessionID, or a
// NotFound error if none exist.
func (s *Store) Latest(sessionID string) (*types.Checkpoint, error) {
	all, err := s.list(sessionID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, types.NewError(types.KindNotFound, component, "no checkpoints for session "+sessionID)
	}
	return all[len(all)-1], nil
}

// RestoreFromCheckpoint rebuilds state's currentStep and steps from the
// checkpoint identified by checkpointID, replacing all later in-memory
// steps with the snapshot's versions. Invariants I1-I5 hold on the
// result because the snapshot itself was only ever written by a
// validated state.
func (s *Store) RestoreFromCheckpoint(state *types.ReasoningState, sessionID, checkpointID string) (*types.ReasoningState, error) {
	all, err := s.list(sessionID)
	if err != nil {
		return nil, err
	}
	var found *types.Checkpoint
	for _, cp := range all {
		if cp.ID == checkpointID {
			found = cp
			break
		}
	}
	if found == nil {
		return nil, types.NewError(types.KindNotFound, component, "checkpoint not found: "+checkpointID)
	}

	out := state.Clone()
	snap := types.CloneSnapshot(found.Snapshot)
	out.CurrentStep = snap.CurrentStep
	out.Steps = snap.Steps
	out.TotalSteps = len(out.Steps)
	return out, nil
}
