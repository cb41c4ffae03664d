package blobstore

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/reasonchain/core/pkg/types"
)

var bucketBlobs = []byte("blobs")

// BoltStore is the default BlobStore implementation: one bbolt bucket
// holding every key, addressed directly by its full path. Prefix
// listing walks a cursor seeked to the prefix rather than maintaining a
// bucket per directory segment, since keys in this domain are a handful
// of fixed hierarchies (active/, metadata/, backups/) rather than an
// open-ended collection the way BoltStore had one bucket per entity
// kind.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) a bbolt database file at
// dataDir/sessions.db.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "sessions.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, types.Wrap(types.KindIOError, component, "failed to open database", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, types.Wrap(types.KindIOError, component, "failed to create bucket", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Put(key string, data []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		cp := make([]byte, len(data))
		copy(cp, data)
		return b.Put([]byte(key), cp)
	})
	if err != nil {
		return types.Wrap(types.KindIOError, component, fmt.Sprintf("failed to put %s", key), err)
	}
	return nil
}

func (s *BoltStore) Get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		data := b.Get([]byte(key))
		if data == nil {
			return errNotFound(key)
		}
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		if b.Get([]byte(key)) == nil {
			return errNotFound(key)
		}
		return b.Delete([]byte(key))
	})
	return err
}

func (s *BoltStore) ListPrefix(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, types.Wrap(types.KindIOError, component, "failed to list prefix "+prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// EnsurePrefix is a no-op: directory semantics are synthesized purely
// from key prefixes, there is no bucket to create per prefix.
func (s *BoltStore) EnsurePrefix(prefix string) error {
	return nil
}

func (s *BoltStore) CopyTree(src, dst string) error {
	keys, err := s.ListPrefix(src)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobs)
		for _, k := range keys {
			suffix := strings.TrimPrefix(k, src)
			data := b.Get([]byte(k))
			cp := make([]byte, len(data))
			copy(cp, data)
			if err := b.Put([]byte(dst+suffix), cp); err != nil {
				return types.Wrap(types.KindIOError, component, "failed to copy "+k, err)
			}
		}
		return nil
	})
}
