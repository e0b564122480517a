package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// sealInfo is the HKDF info string separating the seal key from every other use of the
// master key.
const sealInfo = "casevault-audit-seal-v1"

// hmacSealer signs integrity hashes so that an attacker with write access to the database
// cannot recompute a consistent chain without the master key.
type hmacSealer struct {
	keys KeyProvider
}

// NewSealer creates a Sealer deriving its key from the master key on every call.
func NewSealer(keys KeyProvider) Sealer {
	return &hmacSealer{keys: keys}
}

// deriveSealKey derives a 32-byte HMAC key via HKDF-SHA256.
func deriveSealKey(masterKey []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(sealInfo))

	sealKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, sealKey); err != nil {
		return nil, err
	}
	return sealKey, nil
}

// Seal implements Sealer.
func (s *hmacSealer) Seal(integrityHash string) (string, error) {
	var signature string

	err := s.keys.WithKey(func(key []byte) error {
		sealKey, err := deriveSealKey(key)
		if err != nil {
			return fmt.Errorf("failed to derive seal key: %w", err)
		}
		defer cryptoDomain.Zero(sealKey)

		mac := hmac.New(sha256.New, sealKey)
		mac.Write([]byte(integrityHash))
		signature = hex.EncodeToString(mac.Sum(nil))
		return nil
	})
	if err != nil {
		return "", err
	}
	return signature, nil
}

// Verify implements Sealer.
func (s *hmacSealer) Verify(integrityHash, signature string) error {
	expected, err := s.Seal(integrityHash)
	if err != nil {
		return fmt.Errorf("failed to compute expected seal: %w", err)
	}

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w: seal mismatch", auditDomain.ErrAuditChainIntegrity)
	}
	return nil
}
