package repository

import (
	"context"
	"log/slog"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	"github.com/allisson/casevault/internal/pagination"
)

// readAuditDecorator records a read entry for every successful read. It sits above the
// cache, so a cache hit is audited the same as a storage read.
type readAuditDecorator[T Entity[T]] struct {
	next       Repository[T]
	entityType string
	audit      AuditRecorder
	logger     *slog.Logger
}

// NewReadAuditDecorator wraps next so successful FindByID, FindByOwner and FindAll calls
// append a read entry to audit. Writes pass through untouched.
func NewReadAuditDecorator[T Entity[T]](
	next Repository[T],
	entityType string,
	audit AuditRecorder,
	logger *slog.Logger,
) Repository[T] {
	return &readAuditDecorator[T]{
		next:       next,
		entityType: entityType,
		audit:      audit,
		logger:     logger,
	}
}

func (d *readAuditDecorator[T]) Create(ctx context.Context, entity T) (T, error) {
	return d.next.Create(ctx, entity)
}

func (d *readAuditDecorator[T]) FindByID(ctx context.Context, id int64) (T, error) {
	entity, err := d.next.FindByID(ctx, id)
	if err == nil {
		d.record(ctx, OpFindByID, formatID(id), map[string]any{"operation": OpFindByID})
	}
	return entity, err
}

func (d *readAuditDecorator[T]) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[T], error) {
	page, err := d.next.FindByOwner(ctx, ownerID, params)
	if err == nil {
		d.recordPage(ctx, OpFindByOwner, "owner:"+formatID(ownerID), page)
	}
	return page, err
}

func (d *readAuditDecorator[T]) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[T], error) {
	page, err := d.next.FindAll(ctx, params)
	if err == nil {
		d.recordPage(ctx, OpFindAll, "*", page)
	}
	return page, err
}

func (d *readAuditDecorator[T]) Update(ctx context.Context, entity T) (T, error) {
	return d.next.Update(ctx, entity)
}

func (d *readAuditDecorator[T]) Delete(ctx context.Context, id int64) error {
	return d.next.Delete(ctx, id)
}

func (d *readAuditDecorator[T]) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	return d.next.BulkDelete(ctx, ids)
}

func (d *readAuditDecorator[T]) recordPage(
	ctx context.Context,
	operation, resourceID string,
	page *pagination.Page[T],
) {
	count := 0
	if page != nil {
		count = len(page.Items)
	}
	d.record(ctx, operation, resourceID, map[string]any{"operation": operation, "count": count})
}

// record appends the read entry. The read already succeeded, so an audit failure is logged.
func (d *readAuditDecorator[T]) record(ctx context.Context, operation, resourceID string, details map[string]any) {
	_, err := d.audit.Append(ctx, auditDomain.Event{
		EventType:    d.entityType + "." + string(auditDomain.ActionRead),
		ResourceType: d.entityType,
		ResourceID:   resourceID,
		Action:       auditDomain.ActionRead,
		Details:      details,
		Success:      true,
	})
	if err != nil && d.logger != nil {
		d.logger.Error("failed to record audit entry for read",
			slog.String("entity_type", d.entityType),
			slog.String("operation", operation),
			slog.String("resource_id", resourceID),
			slog.Any("error", err),
		)
	}
}
