package service

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

// canonicalFormatTag versions the canonical encoding. Changing any field, order or
// encoding below requires a new tag.
const canonicalFormatTag = "casevault-audit-v1"

type chainHasher struct{}

// NewHasher creates the SHA-256 chain hasher.
func NewHasher() Hasher {
	return &chainHasher{}
}

// Canonicalize serializes every hashed field of entry in a fixed order. Each variable
// field is prefixed with its 4-byte big-endian length so no two distinct entries share
// an encoding. Details are the exact persisted JSON bytes.
func Canonicalize(entry *auditDomain.AuditLogEntry) []byte {
	buf := make([]byte, 0, 256+len(entry.Details))

	buf = appendLengthPrefixed(buf, []byte(canonicalFormatTag))
	buf = appendLengthPrefixed(buf, []byte(entry.ID))
	buf = appendLengthPrefixed(buf, []byte(auditDomain.FormatTimestamp(entry.Timestamp)))
	buf = appendLengthPrefixed(buf, []byte(entry.EventType))
	buf = appendLengthPrefixed(buf, []byte(entry.ResourceType))
	buf = appendLengthPrefixed(buf, []byte(entry.ResourceID))
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = appendLengthPrefixed(buf, entry.Details)

	if entry.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	if entry.ErrorMessage != nil {
		buf = append(buf, 1)
		buf = appendLengthPrefixed(buf, []byte(*entry.ErrorMessage))
	} else {
		buf = append(buf, 0)
	}

	return buf
}

// Hash implements Hasher.
func (h *chainHasher) Hash(entry *auditDomain.AuditLogEntry, previousHash *string) string {
	sum := sha256.New()
	sum.Write(Canonicalize(entry))
	if previousHash != nil {
		sum.Write([]byte(*previousHash))
	}
	return hex.EncodeToString(sum.Sum(nil))
}

// appendLengthPrefixed appends data preceded by its 4-byte big-endian length.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	if uint64(len(data)) > math.MaxUint32 {
		panic("data length exceeds uint32 max (4GB)")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data))) //nolint:gosec // bounded above
	return append(buf, data...)
}
