// Package service provides the audit chain primitives: canonical serialization, the
// chained integrity hash and the optional HMAC seal.
package service

import (
	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

// Hasher computes chained integrity hashes.
type Hasher interface {
	// Hash returns lowercase hex SHA-256(canonical(entry) || previousHash).
	Hash(entry *auditDomain.AuditLogEntry, previousHash *string) string
}

// Sealer signs integrity hashes with a key derived from the master key.
type Sealer interface {
	// Seal returns the hex HMAC over integrityHash.
	Seal(integrityHash string) (string, error)

	// Verify checks signature against integrityHash in constant time.
	Verify(integrityHash, signature string) error
}

// KeyProvider lends the master key for the duration of one operation.
type KeyProvider interface {
	WithKey(fn func(key []byte) error) error
}
