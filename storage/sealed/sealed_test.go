package sealed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/stockroom/storage"
	"github.com/jmcleod/stockroom/storage/memory"
	"github.com/jmcleod/stockroom/storage/storagetest"
)

func TestSealedStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, err := New(memory.NewStore(), []byte("test secret"))
		require.NoError(t, err)
		t.Cleanup(s.Destroy)
		return s
	})
}

func TestSealedStore_NoPlaintextInInner(t *testing.T) {
	inner := memory.NewStore()
	s, err := New(inner, []byte("test secret"))
	require.NoError(t, err)
	defer s.Destroy()

	require.NoError(t, s.Set(storage.AccessTokenKey, "eyJhbGciOiJIUzI1NiJ9.payload.sig"))

	raw, err := inner.Get(storage.AccessTokenKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, "eyJhbGciOiJIUzI1NiJ9")
	assert.NotContains(t, raw, "payload")
}

func TestSealedStore_WrongSecret(t *testing.T) {
	inner := memory.NewStore()
	a, err := New(inner, []byte("secret-a"))
	require.NoError(t, err)
	require.NoError(t, a.Set(storage.RefreshTokenKey, "refresh"))

	b, err := New(inner, []byte("secret-b"))
	require.NoError(t, err)
	_, err = b.Get(storage.RefreshTokenKey)
	assert.Error(t, err)
}

func TestSealedStore_SwappedKeys(t *testing.T) {
	inner := memory.NewStore()
	s, err := New(inner, []byte("secret"))
	require.NoError(t, err)
	require.NoError(t, s.Set(storage.RefreshTokenKey, "refresh"))

	raw, err := inner.Get(storage.RefreshTokenKey)
	require.NoError(t, err)
	require.NoError(t, inner.Set(storage.AccessTokenKey, raw))

	_, err = s.Get(storage.AccessTokenKey)
	assert.Error(t, err, "value sealed for another key must not open")
}

func TestSealedStore_CorruptValue(t *testing.T) {
	inner := memory.NewStore()
	s, err := New(inner, []byte("secret"))
	require.NoError(t, err)

	require.NoError(t, inner.Set(storage.AccessTokenKey, "not base64 !!"))
	_, err = s.Get(storage.AccessTokenKey)
	assert.Error(t, err)

	require.NoError(t, inner.Set(storage.AccessTokenKey, "bm90IGpzb24="))
	_, err = s.Get(storage.AccessTokenKey)
	assert.Error(t, err)
}

func TestSealedStore_Destroy(t *testing.T) {
	s, err := New(memory.NewStore(), []byte("secret"))
	require.NoError(t, err)
	s.Destroy()
	assert.ErrorIs(t, s.Set(storage.AccessTokenKey, "x"), ErrDestroyed)
}

func TestSealedStore_RejectsEmptySecret(t *testing.T) {
	_, err := New(memory.NewStore(), nil)
	assert.Error(t, err)
	_, err = New(nil, []byte("secret"))
	assert.Error(t, err)
}
