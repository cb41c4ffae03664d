package blobstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/blobstore"
	"github.com/reasonchain/core/pkg/types"
)

func stores(t *testing.T) map[string]blobstore.BlobStore {
	t.Helper()
	bolt, err := blobstore.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })
	return map[string]blobstore.BlobStore{
		"bolt":   bolt,
		"memory": blobstore.NewMemoryStore(),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("a/b/c", []byte("hello")))
			got, err := s.Get("a/b/c")
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), got)
		})
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			require.Error(t, err)
			assert.True(t, types.IsNotFound(err))
		})
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Delete("missing")
			require.Error(t, err)
			assert.True(t, types.IsNotFound(err))
		})
	}
}

func TestListPrefixOrdered(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("p/2", []byte("2")))
			require.NoError(t, s.Put("p/1", []byte("1")))
			require.NoError(t, s.Put("q/1", []byte("x")))
			keys, err := s.ListPrefix("p/")
			require.NoError(t, err)
			assert.Equal(t, []string{"p/1", "p/2"}, keys)
		})
	}
}

func TestCopyTree(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("src/1", []byte("a")))
			require.NoError(t, s.Put("src/2", []byte("b")))
			require.NoError(t, s.CopyTree("src/", "dst/"))
			got, err := s.Get("dst/1")
			require.NoError(t, err)
			assert.Equal(t, []byte("a"), got)
			got, err = s.Get("dst/2")
			require.NoError(t, err)
			assert.Equal(t, []byte("b"), got)
			_, err = s.Get("src/1")
			assert.NoError(t, err, "source must survive a copy")
		})
	}
}

func TestPutOverwritesReadAfterWrite(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put("k", []byte("v1")))
			require.NoError(t, s.Put("k", []byte("v2")))
			got, err := s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)
		})
	}
}
