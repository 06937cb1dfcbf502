// Package storagetest holds the behavioral suite every storage.Store
// implementation must pass.
package storagetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/stockroom/storage"
)

// Run exercises store against the storage.Store contract. newStore must
// return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("SetAndGet", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(storage.AccessTokenKey, "access-1"))
		got, err := s.Get(storage.AccessTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "access-1", got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get("no-such-key")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(storage.AccessTokenKey, "v1"))
		require.NoError(t, s.Set(storage.AccessTokenKey, "v2"))
		got, err := s.Get(storage.AccessTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "v2", got)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(storage.RefreshTokenKey, "refresh-1"))
		require.NoError(t, s.Delete(storage.RefreshTokenKey))
		_, err := s.Get(storage.RefreshTokenKey)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Delete("never-existed"))
	})

	t.Run("Clear", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(storage.AccessTokenKey, "a"))
		require.NoError(t, s.Set(storage.RefreshTokenKey, "r"))
		require.NoError(t, s.Clear())

		_, err := s.Get(storage.AccessTokenKey)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.Get(storage.RefreshTokenKey)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// The store stays usable after a clear.
		require.NoError(t, s.Set(storage.AccessTokenKey, "again"))
		got, err := s.Get(storage.AccessTokenKey)
		require.NoError(t, err)
		assert.Equal(t, "again", got)
	})

	t.Run("ClearEmpty", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Clear())
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("key-%d", i%4)
				assert.NoError(t, s.Set(key, fmt.Sprintf("value-%d", i)))
				_, err := s.Get(key)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()
	})
}
