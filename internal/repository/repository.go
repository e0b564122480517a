// Package repository provides the generic repository contract and the decorators that
// apply validation, caching, failure auditing, logging and metrics uniformly to every
// entity repository.
//
// Decorators are composed with NewPipeline:
//
//	caller -> Validation -> ErrorHandling -> [ReadAudit] -> Caching -> concrete repository
//
// with Logging and Metrics wrapped outside (default) or Logging placed innermost. ReadAudit is
// added when read auditing is enabled.
package repository

import (
	"context"
	"reflect"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/pagination"
)

// Repository errors. Decorators normalize every failure to one of these kinds or to
// apperrors.ErrStorageUnavailable, cryptoDomain.ErrDecryptionIntegrity or apperrors.ErrInternal.
var (
	// ErrValidation indicates the request was rejected before reaching storage.
	ErrValidation = apperrors.Wrap(apperrors.ErrInvalidInput, "validation failed")

	// ErrRepositoryNotFound indicates the requested entity does not exist.
	ErrRepositoryNotFound = apperrors.Wrap(apperrors.ErrNotFound, "entity not found")
)

// MaxBulkDelete bounds the id list of a single BulkDelete.
const MaxBulkDelete = 500

// Entity is implemented by pointer entity types. Clone returns a deep copy so cached
// values never alias what callers hold.
type Entity[T any] interface {
	GetID() int64
	Clone() T
}

// Repository is the typed contract every entity repository and decorator implements.
type Repository[T Entity[T]] interface {
	// Create stores entity and returns it with its id and timestamps.
	Create(ctx context.Context, entity T) (T, error)

	// FindByID returns the entity with id.
	FindByID(ctx context.Context, id int64) (T, error)

	// FindByOwner returns one page of the entities owned by ownerID.
	FindByOwner(ctx context.Context, ownerID int64, params pagination.Params) (*pagination.Page[T], error)

	// FindAll returns one page of all entities.
	FindAll(ctx context.Context, params pagination.Params) (*pagination.Page[T], error)

	// Update replaces the mutable fields of entity.
	Update(ctx context.Context, entity T) (T, error)

	// Delete removes the entity with id.
	Delete(ctx context.Context, id int64) error

	// BulkDelete removes every existing entity in ids and returns how many were removed.
	BulkDelete(ctx context.Context, ids []int64) (int64, error)
}

// Validator checks an entity before Create or Update.
type Validator[T any] func(entity T) error

// Fingerprinter returns a digest source for the stored (encrypted) form of an entity
// without decrypting it. It changes whenever the row is written.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, id int64) (string, error)
}

// AuditRecorder appends audit entries. It is satisfied by the audit logger.
type AuditRecorder interface {
	Append(ctx context.Context, event auditDomain.Event) (*auditDomain.AuditLogEntry, error)
}

// Operation names used by decorators in logs, metrics and audit event types.
const (
	OpCreate      = "create"
	OpFindByID    = "find_by_id"
	OpFindByOwner = "find_by_owner"
	OpFindAll     = "find_all"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpBulkDelete  = "bulk_delete"
)

func clonePage[T Entity[T]](page *pagination.Page[T]) *pagination.Page[T] {
	if page == nil {
		return nil
	}
	items := make([]T, len(page.Items))
	for i, item := range page.Items {
		items[i] = item.Clone()
	}
	return &pagination.Page[T]{Items: items, NextCursor: page.NextCursor}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
