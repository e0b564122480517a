package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

type mockKeyManager struct {
	mock.Mock
}

func (m *mockKeyManager) ProvisionKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockKeyManager) GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *mockKeyManager) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockReencryptor struct {
	mock.Mock
}

func (m *mockReencryptor) ReencryptLegacy(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
