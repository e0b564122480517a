// Package service provides the field-level encryption services: the AES-256-GCM cipher,
// the envelope encryption service, the master key manager and its secure storage backends.
package service

import (
	"context"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
// The authentication tag is kept apart from the ciphertext so it can be stored in its own
// envelope slot.
type AEAD interface {
	// Seal encrypts plaintext with a fresh random nonce.
	Seal(plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error)

	// Open authenticates and decrypts ciphertext.
	Open(nonce, ciphertext, tag, aad []byte) ([]byte, error)
}

// SecureStorage is an OS-provided (or KMS-sealed) store for small secrets.
type SecureStorage interface {
	// IsAvailable reports whether the backend can currently be read and written.
	IsAvailable(ctx context.Context) bool

	// Get returns the stored value, or cryptoDomain.ErrSecretNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Set stores value under name, replacing any previous value.
	Set(ctx context.Context, name string, value []byte) error
}

// LegacyKeySource is a pre-secure-storage location of the master key.
type LegacyKeySource interface {
	// Name identifies the source in operator-facing messages.
	Name() string

	// Load returns the raw key, or cryptoDomain.ErrLegacyKeyNotFound.
	Load(ctx context.Context) ([]byte, error)

	// MarkMigrated invalidates the legacy copy once the key lives in secure storage.
	MarkMigrated(ctx context.Context) error
}

// KeyProvider lends the active master key for the duration of one operation.
type KeyProvider interface {
	WithKey(fn func(key []byte) error) error
}

// FieldEncryptor is what repositories use to protect sensitive columns.
type FieldEncryptor interface {
	// EncryptString returns the stored envelope form of plaintext.
	EncryptString(plaintext string) (string, error)

	// DecryptString opens an envelope; values without the envelope prefix are returned as-is.
	DecryptString(stored string) (string, error)

	// IsEncrypted reports whether stored is in envelope form.
	IsEncrypted(stored string) bool

	// OpenLegacy recognizes the unversioned pre-envelope format. It is only used by the
	// one-time re-encryption pass.
	OpenLegacy(stored string) (string, bool)
}
