package service

import (
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// EncryptionService encrypts individual field values into versioned envelopes.
//
// It holds a reference to the key provider only. Each call borrows the master key, builds
// a cipher, and lets both go when it returns. Apart from the random IV the output is a
// pure function of the key and the input.
type EncryptionService struct {
	keys KeyProvider
}

// NewEncryptionService creates an EncryptionService backed by keys.
func NewEncryptionService(keys KeyProvider) *EncryptionService {
	return &EncryptionService{keys: keys}
}

// Encrypt seals plaintext into a new envelope with a fresh IV.
func (s *EncryptionService) Encrypt(plaintext []byte) (*cryptoDomain.Envelope, error) {
	var env *cryptoDomain.Envelope

	err := s.keys.WithKey(func(key []byte) error {
		aead, err := NewAESGCM(key)
		if err != nil {
			return err
		}

		out := &cryptoDomain.Envelope{Version: cryptoDomain.EnvelopeV1}
		out.IV, out.Ciphertext, out.Tag, err = aead.Seal(plaintext, out.AAD())
		if err != nil {
			return err
		}
		env = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt: %w", err)
	}
	return env, nil
}

// Decrypt authenticates and opens env. Any failure is ErrDecryptionIntegrity.
func (s *EncryptionService) Decrypt(env *cryptoDomain.Envelope) ([]byte, error) {
	if env == nil || env.Version != cryptoDomain.EnvelopeV1 {
		return nil, cryptoDomain.ErrDecryptionIntegrity
	}

	var plaintext []byte
	err := s.keys.WithKey(func(key []byte) error {
		aead, err := NewAESGCM(key)
		if err != nil {
			return err
		}
		plaintext, err = aead.Open(env.IV, env.Ciphertext, env.Tag, env.AAD())
		return err
	})
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// EncryptString returns the stored envelope form of plaintext.
func (s *EncryptionService) EncryptString(plaintext string) (string, error) {
	env, err := s.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return env.Encode(), nil
}

// DecryptString opens a stored value. A value carrying the envelope prefix must
// authenticate; a value without it is legacy plaintext and is returned unchanged.
func (s *EncryptionService) DecryptString(stored string) (string, error) {
	if !cryptoDomain.IsEnvelope(stored) {
		return stored, nil
	}

	env, err := cryptoDomain.ParseEnvelope(stored)
	if err != nil {
		return "", err
	}

	plaintext, err := s.Decrypt(env)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether stored is in envelope form.
func (s *EncryptionService) IsEncrypted(stored string) bool {
	return cryptoDomain.IsEnvelope(stored)
}

// OpenLegacy recognizes values written before envelopes were versioned: base64 of
// iv | tag | ciphertext with no prefix and no AAD. A value is accepted only when it
// authenticates under the current key, so ordinary plaintext that happens to be valid
// base64 is never mistaken for ciphertext.
func (s *EncryptionService) OpenLegacy(stored string) (string, bool) {
	if cryptoDomain.IsEnvelope(stored) {
		return "", false
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(raw) < cryptoDomain.NonceSize+cryptoDomain.TagSize+1 {
		return "", false
	}

	iv := raw[:cryptoDomain.NonceSize]
	tag := raw[cryptoDomain.NonceSize : cryptoDomain.NonceSize+cryptoDomain.TagSize]
	ciphertext := raw[cryptoDomain.NonceSize+cryptoDomain.TagSize:]

	var plaintext []byte
	err = s.keys.WithKey(func(key []byte) error {
		aead, err := NewAESGCM(key)
		if err != nil {
			return err
		}
		plaintext, err = aead.Open(iv, ciphertext, tag, nil)
		return err
	})
	if err != nil {
		return "", false
	}
	return string(plaintext), true
}

// SealLegacy produces the unversioned legacy format. It exists so the re-encryption pass
// can be exercised end to end and is never used for new writes.
func (s *EncryptionService) SealLegacy(plaintext string) (string, error) {
	var out string
	err := s.keys.WithKey(func(key []byte) error {
		aead, err := NewAESGCM(key)
		if err != nil {
			return err
		}
		iv, ciphertext, tag, err := aead.Seal([]byte(plaintext), nil)
		if err != nil {
			return err
		}
		raw := make([]byte, 0, len(iv)+len(tag)+len(ciphertext))
		raw = append(raw, iv...)
		raw = append(raw, tag...)
		raw = append(raw, ciphertext...)
		out = base64.StdEncoding.EncodeToString(raw)
		return nil
	})
	return out, err
}

// selfTest runs an encrypt/decrypt round trip with key and a random probe.
func selfTest(key []byte) error {
	aead, err := NewAESGCM(key)
	if err != nil {
		return err
	}

	probe := []byte("casevault-key-self-test")
	aad := []byte{cryptoDomain.EnvelopeV1}

	nonce, ciphertext, tag, err := aead.Seal(probe, aad)
	if err != nil {
		return err
	}
	opened, err := aead.Open(nonce, ciphertext, tag, aad)
	if err != nil {
		return err
	}
	if string(opened) != string(probe) {
		return fmt.Errorf("round trip mismatch")
	}
	return nil
}
