package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// AESGCMCipher implements AEAD using AES-256-GCM with 12-byte random nonces and
// 16-byte tags.
//
// A cipher is built for each operation from the borrowed master key and dropped
// afterwards. The instance itself is stateless and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if err := cryptoDomain.ValidateKeyLength(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithTagSize(block, cryptoDomain.TagSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh nonce from crypto/rand and splits the tag off
// the sealed output. Nonces are never reused with the same key.
func (a *AESGCMCipher) Seal(plaintext, aad []byte) (nonce, ciphertext, tag []byte, err error) {
	nonce = make([]byte, cryptoDomain.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := a.aead.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - cryptoDomain.TagSize
	return nonce, sealed[:split], sealed[split:], nil
}

// Open verifies the tag and decrypts. No plaintext is returned when verification fails.
func (a *AESGCMCipher) Open(nonce, ciphertext, tag, aad []byte) ([]byte, error) {
	if len(nonce) != cryptoDomain.NonceSize || len(tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionIntegrity
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionIntegrity, err)
	}
	return plaintext, nil
}
