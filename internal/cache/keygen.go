// Package cache provides content-addressed cache keys and the bounded TTL store that the
// repository pipeline caches decrypted entities in.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/allisson/casevault/internal/pagination"
)

// GenerateCacheKey returns "{entityType}:{id}:{first 16 hex of SHA-256(encryptedValue)}".
//
// The fingerprint covers the stored, encrypted form of the entity. Any write re-encrypts
// with a fresh IV, so the key changes and the old entry is orphaned until its TTL expires.
func GenerateCacheKey(entityType string, id int64, encryptedValue string) string {
	sum := sha256.Sum256([]byte(encryptedValue))
	return fmt.Sprintf("%s:%d:%s", entityType, id, hex.EncodeToString(sum[:])[:16])
}

// GeneratePageCacheKey returns "{entityType}:page:{cursor part}:{limit}:{direction}". The
// cursor part is the first 8 hex of SHA-256(cursor), or "start" without a cursor. The
// direction defaults to desc.
func GeneratePageCacheKey(entityType string, params pagination.Params) string {
	cursor := "start"
	if params.Cursor != "" {
		sum := sha256.Sum256([]byte(params.Cursor))
		cursor = hex.EncodeToString(sum[:])[:8]
	}

	direction := params.Direction
	if direction == "" {
		direction = pagination.Desc
	}

	return fmt.Sprintf("%s:page:%s:%d:%s", entityType, cursor, params.Limit, direction)
}

// PagePrefix returns the prefix shared by every page key of entityType.
func PagePrefix(entityType string) string {
	return entityType + ":page:"
}

// OwnerPagePrefix returns the prefix of page keys scoped to one owner.
func OwnerPagePrefix(entityType string, ownerID int64) string {
	return fmt.Sprintf("%s:owner:%d:page:", entityType, ownerID)
}

// GenerateOwnerPageCacheKey scopes a page key to one owner.
func GenerateOwnerPageCacheKey(entityType string, ownerID int64, params pagination.Params) string {
	return fmt.Sprintf("%s:owner:%d:%s", entityType, ownerID,
		GeneratePageCacheKey(entityType, params)[len(entityType)+1:])
}
