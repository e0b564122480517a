// Package domain defines the key material and envelope formats used for field-level
// encryption of sensitive case data.
package domain

const (
	// KeySize is the only accepted master key length: 32 bytes for AES-256.
	KeySize = 32

	// NonceSize is the GCM nonce (IV) length in bytes.
	NonceSize = 12

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16

	// EnvelopePrefix marks a stored string as an encryption envelope. Any value that
	// starts with it is parsed as an envelope and never treated as plaintext.
	EnvelopePrefix = "cvenc:"

	// EnvelopeV1 is the current envelope format version. The version byte is bound into
	// the GCM additional data, so it cannot be swapped without failing authentication.
	EnvelopeV1 byte = 0x01

	// DefaultKeyName is the secure storage entry that holds the master key.
	DefaultKeyName = "master-encryption-key"
)
