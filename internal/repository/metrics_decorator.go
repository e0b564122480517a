package repository

import (
	"context"
	"time"

	"github.com/allisson/casevault/internal/metrics"
	"github.com/allisson/casevault/internal/pagination"
)

// metricsDecorator records operation counts and durations per entity type.
type metricsDecorator[T Entity[T]] struct {
	next       Repository[T]
	entityType string
	metrics    metrics.BusinessMetrics
}

// NewMetricsDecorator wraps next with metrics recording.
func NewMetricsDecorator[T Entity[T]](
	next Repository[T],
	entityType string,
	m metrics.BusinessMetrics,
) Repository[T] {
	return &metricsDecorator[T]{next: next, entityType: entityType, metrics: m}
}

func (d *metricsDecorator[T]) Create(ctx context.Context, entity T) (T, error) {
	start := time.Now()
	created, err := d.next.Create(ctx, entity)
	d.record(ctx, OpCreate, start, err)
	return created, err
}

func (d *metricsDecorator[T]) FindByID(ctx context.Context, id int64) (T, error) {
	start := time.Now()
	entity, err := d.next.FindByID(ctx, id)
	d.record(ctx, OpFindByID, start, err)
	return entity, err
}

func (d *metricsDecorator[T]) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[T], error) {
	start := time.Now()
	page, err := d.next.FindByOwner(ctx, ownerID, params)
	d.record(ctx, OpFindByOwner, start, err)
	return page, err
}

func (d *metricsDecorator[T]) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[T], error) {
	start := time.Now()
	page, err := d.next.FindAll(ctx, params)
	d.record(ctx, OpFindAll, start, err)
	return page, err
}

func (d *metricsDecorator[T]) Update(ctx context.Context, entity T) (T, error) {
	start := time.Now()
	updated, err := d.next.Update(ctx, entity)
	d.record(ctx, OpUpdate, start, err)
	return updated, err
}

func (d *metricsDecorator[T]) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := d.next.Delete(ctx, id)
	d.record(ctx, OpDelete, start, err)
	return err
}

func (d *metricsDecorator[T]) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	start := time.Now()
	n, err := d.next.BulkDelete(ctx, ids)
	d.record(ctx, OpBulkDelete, start, err)
	return n, err
}

func (d *metricsDecorator[T]) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, d.entityType, operation, status)
	d.metrics.RecordDuration(ctx, d.entityType, operation, time.Since(start), status)
}
