package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/stockroom/internal/util"
)

func TestEnvelope(t *testing.T) {
	key, err := util.RandomBytes(util.AESKeySize)
	require.NoError(t, err)
	plain := []byte("refresh-token")
	aad := []byte("context")

	env, err := Seal(key, plain, aad)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Ver)
	assert.Equal(t, "aes256gcm", env.Scheme)
	assert.Len(t, env.Nonce, 12)

	opened, err := Open(key, env, aad)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)

	t.Run("WrongAAD", func(t *testing.T) {
		_, err := Open(key, env, []byte("wrong context"))
		assert.Error(t, err)
	})

	t.Run("WrongKey", func(t *testing.T) {
		other, _ := util.RandomBytes(util.AESKeySize)
		_, err := Open(other, env, aad)
		assert.Error(t, err)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		bad := *env
		bad.Ver = 99
		_, err := Open(key, &bad, aad)
		assert.Error(t, err)
	})

	t.Run("UnsupportedScheme", func(t *testing.T) {
		bad := *env
		bad.Scheme = "raw"
		_, err := Open(key, &bad, aad)
		assert.Error(t, err)
	})
}
