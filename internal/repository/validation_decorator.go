package repository

import (
	"context"
	"fmt"

	validation "github.com/jellydator/validation"

	"github.com/allisson/casevault/internal/pagination"
)

// validationDecorator rejects invalid requests with ErrValidation without calling next.
type validationDecorator[T Entity[T]] struct {
	next     Repository[T]
	validate Validator[T]
}

// NewValidationDecorator wraps next with request validation. validate may be nil when the
// entity has no rules of its own.
func NewValidationDecorator[T Entity[T]](next Repository[T], validate Validator[T]) Repository[T] {
	return &validationDecorator[T]{next: next, validate: validate}
}

func (d *validationDecorator[T]) Create(ctx context.Context, entity T) (T, error) {
	if err := d.validateEntity(entity); err != nil {
		var zero T
		return zero, err
	}
	return d.next.Create(ctx, entity)
}

func (d *validationDecorator[T]) FindByID(ctx context.Context, id int64) (T, error) {
	if err := validateID("id", id); err != nil {
		var zero T
		return zero, err
	}
	return d.next.FindByID(ctx, id)
}

func (d *validationDecorator[T]) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[T], error) {
	if err := validateID("owner_id", ownerID); err != nil {
		return nil, err
	}
	params, err := validatePagination(params)
	if err != nil {
		return nil, err
	}
	return d.next.FindByOwner(ctx, ownerID, params)
}

func (d *validationDecorator[T]) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[T], error) {
	params, err := validatePagination(params)
	if err != nil {
		return nil, err
	}
	return d.next.FindAll(ctx, params)
}

func (d *validationDecorator[T]) Update(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := d.validateEntity(entity); err != nil {
		return zero, err
	}
	if err := validateID("id", entity.GetID()); err != nil {
		return zero, err
	}
	return d.next.Update(ctx, entity)
}

func (d *validationDecorator[T]) Delete(ctx context.Context, id int64) error {
	if err := validateID("id", id); err != nil {
		return err
	}
	return d.next.Delete(ctx, id)
}

func (d *validationDecorator[T]) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	err := validation.Validate(ids,
		validation.Required,
		validation.Length(1, MaxBulkDelete),
		validation.Each(validation.Required, validation.Min(int64(1))),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: ids: %w", ErrValidation, err)
	}
	return d.next.BulkDelete(ctx, ids)
}

func (d *validationDecorator[T]) validateEntity(entity T) error {
	if any(entity) == nil || isNilPointer(entity) {
		return fmt.Errorf("%w: entity is required", ErrValidation)
	}
	if d.validate == nil {
		return nil
	}
	if err := d.validate(entity); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func validateID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be greater than 0", ErrValidation, name)
	}
	return nil
}

func validatePagination(params pagination.Params) (pagination.Params, error) {
	params = params.Normalized()
	if err := params.Validate(); err != nil {
		return params, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return params, nil
}
