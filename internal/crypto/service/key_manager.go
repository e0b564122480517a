package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
	"github.com/allisson/casevault/internal/errors"
)

// KeyManager obtains, validates and migrates the master encryption key, and owns it for
// the lifetime of the process.
//
// It is constructed explicitly and passed to its consumers; GetOrCreateKey initializes it
// once and later calls return the same key.
type KeyManager struct {
	storage  SecureStorage
	legacy   []LegacyKeySource
	keyName  string
	logger   *slog.Logger
	selfTest func(key []byte) error

	mu  sync.RWMutex
	key *cryptoDomain.EncryptionKey
}

// NewKeyManager creates a KeyManager reading keyName from storage. Legacy sources are
// consulted in order when storage has no key yet.
func NewKeyManager(
	storage SecureStorage,
	keyName string,
	logger *slog.Logger,
	legacy ...LegacyKeySource,
) *KeyManager {
	if keyName == "" {
		keyName = cryptoDomain.DefaultKeyName
	}
	return &KeyManager{
		storage:  storage,
		legacy:   legacy,
		keyName:  keyName,
		logger:   logger,
		selfTest: selfTest,
	}
}

// GetOrCreateKey runs the startup key sequence:
//
//  1. secure storage must be available
//  2. load the key from secure storage
//  3. if absent, migrate it from the first legacy source that has one
//  4. with no key anywhere, fail (a key is never generated here)
//  5. the key must be exactly 32 bytes
//  6. an encryption round trip must succeed
//
// Every failure is terminal for startup. Error messages never include key material.
func (m *KeyManager) GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key != nil {
		return m.key, nil
	}

	if !m.storage.IsAvailable(ctx) {
		return nil, cryptoDomain.ErrSecureStorageUnavailable
	}

	raw, err := m.storage.Get(ctx, m.keyName)
	switch {
	case err == nil:
	case errors.Is(err, cryptoDomain.ErrSecretNotFound):
		raw, err = m.migrateLegacyKey(ctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrSecureStorageUnavailable, err)
	}
	defer cryptoDomain.Zero(raw)

	key, err := cryptoDomain.NewEncryptionKey(m.keyName, raw)
	if err != nil {
		return nil, err
	}

	if err := m.selfTest(key.Key); err != nil {
		key.Close()
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeySelfTestFailed, err)
	}

	m.key = key
	m.logger.Info("encryption key loaded", slog.String("key_name", m.keyName))
	return m.key, nil
}

// migrateLegacyKey moves a key from the first legacy source that has one into secure
// storage and invalidates the legacy copy.
func (m *KeyManager) migrateLegacyKey(ctx context.Context) ([]byte, error) {
	for _, source := range m.legacy {
		raw, err := source.Load(ctx)
		if errors.Is(err, cryptoDomain.ErrLegacyKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", cryptoDomain.ErrKeyMigrationFailed, source.Name(), err)
		}

		if err := cryptoDomain.ValidateKeyLength(raw); err != nil {
			cryptoDomain.Zero(raw)
			return nil, err
		}

		if err := m.storage.Set(ctx, m.keyName, raw); err != nil {
			cryptoDomain.Zero(raw)
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyMigrationFailed, err)
		}

		if err := source.MarkMigrated(ctx); err != nil {
			m.logger.Warn("encryption key migrated but the legacy copy could not be invalidated; remove it manually",
				slog.String("source", source.Name()),
				slog.Any("error", err),
			)
		} else {
			m.logger.Warn("encryption key migrated to secure storage; the legacy copy is no longer used",
				slog.String("source", source.Name()),
			)
		}
		return raw, nil
	}

	return nil, cryptoDomain.ErrNoEncryptionKeyFound
}

// ProvisionKey generates a new random key and stores it. It refuses to replace an existing
// key. The base64 form is returned once so the operator can escrow it.
func (m *KeyManager) ProvisionKey(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.storage.IsAvailable(ctx) {
		return "", cryptoDomain.ErrSecureStorageUnavailable
	}

	existing, err := m.storage.Get(ctx, m.keyName)
	switch {
	case err == nil:
		cryptoDomain.Zero(existing)
		return "", cryptoDomain.ErrKeyAlreadyExists
	case errors.Is(err, cryptoDomain.ErrSecretNotFound):
	default:
		return "", fmt.Errorf("%w: %w", cryptoDomain.ErrSecureStorageUnavailable, err)
	}

	raw := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(raw)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}

	if err := m.storage.Set(ctx, m.keyName, raw); err != nil {
		return "", fmt.Errorf("%w: %w", cryptoDomain.ErrSecureStorageUnavailable, err)
	}

	m.logger.Info("encryption key provisioned", slog.String("key_name", m.keyName))
	return base64.StdEncoding.EncodeToString(raw), nil
}

// WithKey lends the loaded key to fn. fn must not retain the slice.
func (m *KeyManager) WithKey(fn func(key []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.key == nil {
		return cryptoDomain.ErrKeyClosed
	}
	return fn(m.key.Key)
}

// Ready re-checks storage availability and the loaded key. It backs the readiness probe.
func (m *KeyManager) Ready(ctx context.Context) error {
	if !m.storage.IsAvailable(ctx) {
		return cryptoDomain.ErrSecureStorageUnavailable
	}
	return m.WithKey(func(key []byte) error {
		if err := m.selfTest(key); err != nil {
			return fmt.Errorf("%w: %v", cryptoDomain.ErrKeySelfTestFailed, err)
		}
		return nil
	})
}

// Close wipes the key material. Later WithKey calls fail with ErrKeyClosed.
func (m *KeyManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.key.Close()
	m.key = nil
}
