package domain

import (
	"github.com/allisson/casevault/internal/errors"
)

// Key lifecycle errors. Every one of them is terminal for startup and none of their
// messages carries key material.
var (
	// ErrSecureStorageUnavailable indicates the OS credential store (or the sealed key file)
	// cannot be reached, so the key can neither be read nor written.
	ErrSecureStorageUnavailable = errors.Wrap(errors.ErrUnavailable, "secure storage unavailable")

	// ErrNoEncryptionKeyFound indicates neither secure storage nor any legacy source holds a
	// key. A key is never generated implicitly at startup; the operator must provision one.
	ErrNoEncryptionKeyFound = errors.Wrap(errors.ErrNotFound, "no encryption key found")

	// ErrInvalidKeyLength indicates the key is not exactly 32 bytes.
	ErrInvalidKeyLength = errors.Wrap(errors.ErrInvalidInput, "invalid encryption key length")

	// ErrKeyMigrationFailed indicates a legacy key was found but could not be moved into
	// secure storage.
	ErrKeyMigrationFailed = errors.Wrap(errors.ErrInternal, "encryption key migration failed")

	// ErrKeySelfTestFailed indicates the encrypt/decrypt round trip with the loaded key failed.
	ErrKeySelfTestFailed = errors.Wrap(errors.ErrInternal, "encryption key self-test failed")

	// ErrKeyAlreadyExists indicates provisioning was asked to replace an existing key.
	ErrKeyAlreadyExists = errors.Wrap(errors.ErrConflict, "encryption key already exists")

	// ErrUnsupportedKMSScheme indicates the KMS key URI names no registered keeper driver.
	ErrUnsupportedKMSScheme = errors.Wrap(errors.ErrInvalidInput, "unsupported KMS key URI scheme")

	// ErrKeyClosed indicates the key manager was closed and its key material wiped.
	ErrKeyClosed = errors.Wrap(errors.ErrUnavailable, "encryption key closed")
)

// Storage lookup errors.
var (
	// ErrSecretNotFound indicates a secure storage entry does not exist.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secure storage entry not found")

	// ErrLegacyKeyNotFound indicates a legacy source holds no key.
	ErrLegacyKeyNotFound = errors.Wrap(errors.ErrNotFound, "legacy key not found")
)

// ErrDecryptionIntegrity indicates an envelope is malformed, carries an unknown version or
// fails GCM authentication. It means tampering, corruption or the wrong key, and is never
// answered by returning the stored string as plaintext.
var ErrDecryptionIntegrity = errors.Wrap(errors.ErrIntegrity, "decryption integrity check failed")
