package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/zalando/go-keyring"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
	"github.com/allisson/casevault/internal/errors"
)

// keyringProbeName is looked up to test availability. It is never written.
const keyringProbeName = "availability-probe"

// KeyringStorage keeps secrets in the OS credential store: macOS Keychain, Windows
// Credential Manager or the Linux Secret Service. Values are stored base64-encoded because
// the backends only hold strings.
type KeyringStorage struct {
	service string
}

// NewKeyringStorage creates a KeyringStorage whose entries live under service.
func NewKeyringStorage(service string) *KeyringStorage {
	return &KeyringStorage{service: service}
}

// IsAvailable probes the credential store. A missing entry still proves the store answers.
func (s *KeyringStorage) IsAvailable(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	_, err := keyring.Get(s.service, keyringProbeName)
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Get returns the decoded value stored under name.
func (s *KeyringStorage) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoded, err := keyring.Get(s.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, cryptoDomain.ErrSecretNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring entry: %w", err)
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode keyring entry: %w", err)
	}
	return value, nil
}

// Set stores value under name.
func (s *KeyringStorage) Set(ctx context.Context, name string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := keyring.Set(s.service, name, base64.StdEncoding.EncodeToString(value)); err != nil {
		return fmt.Errorf("failed to write keyring entry: %w", err)
	}
	return nil
}
