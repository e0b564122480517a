package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/casevault/internal/pagination"
)

// loggingDecorator records method, argument shape, duration and outcome. It never logs
// entity values or ids lists, only their shape.
type loggingDecorator[T Entity[T]] struct {
	next       Repository[T]
	entityType string
	logger     *slog.Logger
}

// NewLoggingDecorator wraps next with structured operation logging.
func NewLoggingDecorator[T Entity[T]](next Repository[T], entityType string, logger *slog.Logger) Repository[T] {
	return &loggingDecorator[T]{next: next, entityType: entityType, logger: logger}
}

func (d *loggingDecorator[T]) Create(ctx context.Context, entity T) (T, error) {
	start := time.Now()
	created, err := d.next.Create(ctx, entity)
	d.log(ctx, OpCreate, start, err)
	return created, err
}

func (d *loggingDecorator[T]) FindByID(ctx context.Context, id int64) (T, error) {
	start := time.Now()
	entity, err := d.next.FindByID(ctx, id)
	d.log(ctx, OpFindByID, start, err, slog.Int64("id", id))
	return entity, err
}

func (d *loggingDecorator[T]) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[T], error) {
	start := time.Now()
	page, err := d.next.FindByOwner(ctx, ownerID, params)
	attrs := append(pageAttrs(params, page), slog.Int64("owner_id", ownerID))
	d.log(ctx, OpFindByOwner, start, err, attrs...)
	return page, err
}

func (d *loggingDecorator[T]) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[T], error) {
	start := time.Now()
	page, err := d.next.FindAll(ctx, params)
	d.log(ctx, OpFindAll, start, err, pageAttrs(params, page)...)
	return page, err
}

func (d *loggingDecorator[T]) Update(ctx context.Context, entity T) (T, error) {
	start := time.Now()
	updated, err := d.next.Update(ctx, entity)
	d.log(ctx, OpUpdate, start, err, slog.Int64("id", entity.GetID()))
	return updated, err
}

func (d *loggingDecorator[T]) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := d.next.Delete(ctx, id)
	d.log(ctx, OpDelete, start, err, slog.Int64("id", id))
	return err
}

func (d *loggingDecorator[T]) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	start := time.Now()
	n, err := d.next.BulkDelete(ctx, ids)
	d.log(ctx, OpBulkDelete, start, err, slog.Int("ids", len(ids)), slog.Int64("deleted", n))
	return n, err
}

func (d *loggingDecorator[T]) log(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
	attrs ...slog.Attr,
) {
	attrs = append(attrs,
		slog.String("entity_type", d.entityType),
		slog.String("operation", operation),
		slog.Duration("duration", time.Since(start)),
	)

	if err != nil {
		attrs = append(attrs, slog.String("outcome", "error"), slog.Any("error", err))
		d.logger.LogAttrs(ctx, slog.LevelError, "repository operation failed", attrs...)
		return
	}

	attrs = append(attrs, slog.String("outcome", "success"))
	d.logger.LogAttrs(ctx, slog.LevelDebug, "repository operation completed", attrs...)
}

func pageAttrs[T any](params pagination.Params, page *pagination.Page[T]) []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("limit", params.Limit),
		slog.String("direction", string(params.Direction)),
		slog.Bool("has_cursor", params.Cursor != ""),
	}
	if page != nil {
		attrs = append(attrs, slog.Int("items", len(page.Items)))
	}
	return attrs
}
