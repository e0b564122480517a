package service

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

// newLoadedKeyManager returns a KeyManager whose key has already been loaded.
func newLoadedKeyManager(t *testing.T) *KeyManager {
	t.Helper()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), cryptoDomain.DefaultKeyName, randomKey(t)))

	km := NewKeyManager(storage, cryptoDomain.DefaultKeyName, newTestLogger())
	_, err := km.GetOrCreateKey(context.Background())
	require.NoError(t, err)
	t.Cleanup(km.Close)
	return km
}
