package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/casevault/internal/errors"
)

func TestNewEncryptionKey(t *testing.T) {
	t.Run("accepts exactly 32 bytes", func(t *testing.T) {
		raw := make([]byte, KeySize)
		raw[0] = 7

		key, err := NewEncryptionKey(DefaultKeyName, raw)
		require.NoError(t, err)
		assert.Equal(t, DefaultKeyName, key.Name)
		assert.Equal(t, raw, key.Key)

		// The key owns its own copy.
		raw[0] = 9
		assert.Equal(t, byte(7), key.Key[0])
	})

	for _, size := range []int{0, 16, 31, 33, 64} {
		t.Run(fmt.Sprintf("rejects %d bytes", size), func(t *testing.T) {
			key, err := NewEncryptionKey(DefaultKeyName, make([]byte, size))
			assert.Nil(t, key)
			assert.ErrorIs(t, err, ErrInvalidKeyLength)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestEncryptionKey_Close(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = 0xAB
	}
	key, err := NewEncryptionKey("k", raw)
	require.NoError(t, err)

	material := key.Key
	key.Close()

	assert.Nil(t, key.Key)
	for _, b := range material {
		assert.Equal(t, byte(0), b)
	}

	var nilKey *EncryptionKey
	assert.NotPanics(t, func() { nilKey.Close() })
}

func TestZero_SharedBackingArray(t *testing.T) {
	buf := []byte("0123456789abcdef0123456789abcdef")
	view := buf[8:16]

	Zero(view)

	assert.Equal(t, make([]byte, 8), buf[8:16])
	assert.Equal(t, "01234567", string(buf[:8]))
	assert.NotPanics(t, func() { Zero(nil) })
}
