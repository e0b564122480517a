package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/pagination"
)

// errorHandlingDecorator is the failure boundary of the pipeline. Every error leaving it is
// one of the normalized kinds, and failed mutations (and failed decryptions) are recorded
// in the audit log with success=false.
type errorHandlingDecorator[T Entity[T]] struct {
	next       Repository[T]
	entityType string
	audit      AuditRecorder
	logger     *slog.Logger
}

// NewErrorHandlingDecorator wraps next with error normalization and failure auditing. audit
// may be nil, in which case failures are only normalized.
func NewErrorHandlingDecorator[T Entity[T]](
	next Repository[T],
	entityType string,
	audit AuditRecorder,
	logger *slog.Logger,
) Repository[T] {
	return &errorHandlingDecorator[T]{
		next:       next,
		entityType: entityType,
		audit:      audit,
		logger:     logger,
	}
}

func (d *errorHandlingDecorator[T]) Create(ctx context.Context, entity T) (T, error) {
	created, err := d.next.Create(ctx, entity)
	if err != nil {
		return created, d.fail(ctx, OpCreate, auditDomain.ActionCreate, "new", err)
	}
	return created, nil
}

func (d *errorHandlingDecorator[T]) FindByID(ctx context.Context, id int64) (T, error) {
	entity, err := d.next.FindByID(ctx, id)
	if err != nil {
		return entity, d.fail(ctx, OpFindByID, auditDomain.ActionRead, formatID(id), err)
	}
	return entity, nil
}

func (d *errorHandlingDecorator[T]) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[T], error) {
	page, err := d.next.FindByOwner(ctx, ownerID, params)
	if err != nil {
		return nil, d.fail(ctx, OpFindByOwner, auditDomain.ActionRead, "owner:"+formatID(ownerID), err)
	}
	return page, nil
}

func (d *errorHandlingDecorator[T]) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[T], error) {
	page, err := d.next.FindAll(ctx, params)
	if err != nil {
		return nil, d.fail(ctx, OpFindAll, auditDomain.ActionRead, "*", err)
	}
	return page, nil
}

func (d *errorHandlingDecorator[T]) Update(ctx context.Context, entity T) (T, error) {
	updated, err := d.next.Update(ctx, entity)
	if err != nil {
		return updated, d.fail(ctx, OpUpdate, auditDomain.ActionUpdate, formatID(entity.GetID()), err)
	}
	return updated, nil
}

func (d *errorHandlingDecorator[T]) Delete(ctx context.Context, id int64) error {
	if err := d.next.Delete(ctx, id); err != nil {
		return d.fail(ctx, OpDelete, auditDomain.ActionDelete, formatID(id), err)
	}
	return nil
}

func (d *errorHandlingDecorator[T]) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	n, err := d.next.BulkDelete(ctx, ids)
	if err != nil {
		return n, d.fail(ctx, OpBulkDelete, auditDomain.ActionDelete, "bulk", err)
	}
	return n, nil
}

// fail normalizes err and, for mutations and integrity failures, records a failed audit
// entry. An audit failure is logged and never replaces the primary error.
func (d *errorHandlingDecorator[T]) fail(
	ctx context.Context,
	operation string,
	action auditDomain.Action,
	resourceID string,
	err error,
) error {
	normalized := Normalize(err)

	if d.audit == nil || !shouldAudit(action, normalized) {
		return normalized
	}
	if action == auditDomain.ActionRead {
		action = auditDomain.ActionDecrypt
	}

	message := kindMessage(normalized)
	_, auditErr := d.audit.Append(ctx, auditDomain.Event{
		EventType:    d.entityType + "." + operation + ".failed",
		ResourceType: d.entityType,
		ResourceID:   resourceID,
		Action:       action,
		Details:      map[string]any{"operation": operation},
		Success:      false,
		ErrorMessage: &message,
	})
	if auditErr != nil && d.logger != nil {
		d.logger.Error("failed to record audit entry for failed operation",
			slog.String("entity_type", d.entityType),
			slog.String("operation", operation),
			slog.Any("error", auditErr),
		)
	}

	return normalized
}

// shouldAudit selects which failures enter the audit log: every failed mutation, and reads
// that failed because stored ciphertext did not authenticate.
func shouldAudit(action auditDomain.Action, err error) bool {
	if action != auditDomain.ActionRead {
		return true
	}
	return errors.Is(err, cryptoDomain.ErrDecryptionIntegrity)
}

// Normalize maps any repository failure onto one of the pipeline's error kinds while
// keeping the cause in the chain.
func Normalize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrRepositoryNotFound):
		return err
	case errors.Is(err, apperrors.ErrInvalidInput):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	case errors.Is(err, cryptoDomain.ErrDecryptionIntegrity), errors.Is(err, apperrors.ErrStorageUnavailable):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
	case errors.Is(err, apperrors.ErrInternal):
		return err
	default:
		return fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
	}
}

// kindMessage is the error_message stored in the audit log. It names the failure kind only,
// since raw messages may echo input values.
func kindMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation failed"
	case errors.Is(err, ErrRepositoryNotFound):
		return "entity not found"
	case errors.Is(err, cryptoDomain.ErrDecryptionIntegrity):
		return "decryption integrity check failed"
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return "storage unavailable"
	default:
		return "internal error"
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
