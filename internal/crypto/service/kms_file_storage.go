package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

const sealedFileExt = ".sealed"

// KMSFileStorage keeps each secret in its own file under dir, sealed by a KMS keeper. It
// serves hosts without an OS credential store. Files are written 0600 inside a 0700
// directory and replaced atomically.
type KMSFileStorage struct {
	dir    string
	keeper cryptoDomain.KMSKeeper
}

// NewKMSFileStorage creates a KMSFileStorage. The keeper stays owned by the caller.
func NewKMSFileStorage(dir string, keeper cryptoDomain.KMSKeeper) *KMSFileStorage {
	return &KMSFileStorage{dir: dir, keeper: keeper}
}

// IsAvailable checks that the directory is usable and the keeper can seal a probe.
func (s *KMSFileStorage) IsAvailable(ctx context.Context) bool {
	if s.keeper == nil {
		return false
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return false
	}
	_, err := s.keeper.Encrypt(ctx, []byte("probe"))
	return err == nil
}

// Get opens the sealed file for name.
func (s *KMSFileStorage) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	sealed, err := os.ReadFile(path) //nolint:gosec // path is built from a validated name
	if os.IsNotExist(err) {
		return nil, cryptoDomain.ErrSecretNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sealed file: %w", err)
	}

	value, err := s.keeper.Decrypt(ctx, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal %s: %w", name, err)
	}
	return value, nil
}

// Set seals value and replaces the file for name.
func (s *KMSFileStorage) Set(ctx context.Context, name string, value []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	sealed, err := s.keeper.Encrypt(ctx, value)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", name, err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create secure storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict temp file: %w", err)
	}
	if _, err := tmp.Write(sealed); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write sealed file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync sealed file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close sealed file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace sealed file: %w", err)
	}
	return nil
}

func (s *KMSFileStorage) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secure storage entry name %q", name)
	}
	return filepath.Join(s.dir, name+sealedFileExt), nil
}
