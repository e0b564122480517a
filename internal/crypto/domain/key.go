package domain

import "fmt"

// EncryptionKey is the single active master key used for field-level encryption.
//
// The KeyManager owns the instance for the process lifetime. Other components never
// keep a copy of Key; they borrow it for the duration of one operation.
type EncryptionKey struct {
	// Name is the secure storage entry the key was loaded from.
	Name string
	// Key is the raw 32-byte key material.
	Key []byte
}

// NewEncryptionKey validates the key length and copies raw so the caller can wipe its
// own buffer afterwards.
func NewEncryptionKey(name string, raw []byte) (*EncryptionKey, error) {
	if err := ValidateKeyLength(raw); err != nil {
		return nil, err
	}

	key := make([]byte, KeySize)
	copy(key, raw)
	return &EncryptionKey{Name: name, Key: key}, nil
}

// ValidateKeyLength returns ErrInvalidKeyLength unless raw is exactly KeySize bytes.
func ValidateKeyLength(raw []byte) error {
	if len(raw) != KeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeyLength, KeySize, len(raw))
	}
	return nil
}

// Close wipes the key material.
func (k *EncryptionKey) Close() {
	if k == nil {
		return
	}
	Zero(k.Key)
	k.Key = nil
}

// Zero overwrites b in place. Slices that share its backing array see the zeros too.
func Zero(b []byte) {
	clear(b)
}
