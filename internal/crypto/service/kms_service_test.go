package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// localKeeperURI returns a base64key:// URI over a fresh random sealing key.
func localKeeperURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSService_OpenKeeper_Rejected(t *testing.T) {
	ctx := context.Background()
	sealingKey := localKeeperURI(t)

	tests := []struct {
		name   string
		keyURI string
		target error
	}{
		{name: "empty uri", keyURI: "", target: cryptoDomain.ErrUnsupportedKMSScheme},
		{name: "no scheme", keyURI: "alias/casevault", target: cryptoDomain.ErrUnsupportedKMSScheme},
		{name: "unknown scheme", keyURI: "rot13://key", target: cryptoDomain.ErrUnsupportedKMSScheme},
		{name: "file scheme", keyURI: "file:///etc/casevault/key", target: cryptoDomain.ErrUnsupportedKMSScheme},
		{name: "malformed local key", keyURI: "base64key://%%%", target: cryptoDomain.ErrSecureStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keeper, err := NewKMSService().OpenKeeper(ctx, tt.keyURI)
			assert.Nil(t, keeper)
			assert.ErrorIs(t, err, tt.target)
			assert.NotContains(t, err.Error(), sealingKey[len("base64key://"):])
		})
	}
}

func TestKMSService_SealsMasterKey(t *testing.T) {
	ctx := context.Background()

	opened, err := NewKMSService().OpenKeeper(ctx, localKeeperURI(t))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, opened.Close())
	}()

	keeper, ok := opened.(*secrets.Keeper)
	require.True(t, ok, "local keepers are gocloud secrets keepers")

	masterKey := randomKey(t)
	sealed, err := keeper.Encrypt(ctx, masterKey)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), string(masterKey))

	unsealed, err := opened.Decrypt(ctx, sealed)
	require.NoError(t, err)
	assert.Equal(t, masterKey, unsealed)

	_, err = opened.Decrypt(ctx, []byte("casevault sealed key v0"))
	assert.Error(t, err)
}

func TestKMSService_KeepersAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewKMSService()

	first, err := svc.OpenKeeper(ctx, localKeeperURI(t))
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	second, err := svc.OpenKeeper(ctx, localKeeperURI(t))
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	sealed, err := first.Encrypt(ctx, randomKey(t))
	require.NoError(t, err)

	unsealed, err := second.Decrypt(ctx, sealed)
	assert.Error(t, err)
	assert.Nil(t, unsealed)
}
