package service

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockSecureStorage struct {
	mock.Mock
}

func (m *mockSecureStorage) IsAvailable(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *mockSecureStorage) Get(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockSecureStorage) Set(ctx context.Context, name string, value []byte) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

type mockLegacyKeySource struct {
	mock.Mock
}

func (m *mockLegacyKeySource) Name() string {
	return "mock"
}

func (m *mockLegacyKeySource) Load(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockLegacyKeySource) MarkMigrated(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
