package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/pagination"
)

func TestValidationDecorator_RejectsWithoutCallingInner(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		op   string
		call func(repo Repository[*widget]) error
	}{
		{
			name: "create with invalid entity",
			op:   OpCreate,
			call: func(repo Repository[*widget]) error {
				_, err := repo.Create(ctx, &widget{Owner: 1})
				return err
			},
		},
		{
			name: "create with nil entity",
			op:   OpCreate,
			call: func(repo Repository[*widget]) error {
				_, err := repo.Create(ctx, nil)
				return err
			},
		},
		{
			name: "find by zero id",
			op:   OpFindByID,
			call: func(repo Repository[*widget]) error {
				_, err := repo.FindByID(ctx, 0)
				return err
			},
		},
		{
			name: "find by negative owner",
			op:   OpFindByOwner,
			call: func(repo Repository[*widget]) error {
				_, err := repo.FindByOwner(ctx, -1, pagination.Params{})
				return err
			},
		},
		{
			name: "find all beyond max limit",
			op:   OpFindAll,
			call: func(repo Repository[*widget]) error {
				_, err := repo.FindAll(ctx, pagination.Params{Limit: pagination.MaxLimit + 1})
				return err
			},
		},
		{
			name: "find all with bad direction",
			op:   OpFindAll,
			call: func(repo Repository[*widget]) error {
				_, err := repo.FindAll(ctx, pagination.Params{Direction: "sideways"})
				return err
			},
		},
		{
			name: "update without id",
			op:   OpUpdate,
			call: func(repo Repository[*widget]) error {
				_, err := repo.Update(ctx, &widget{Name: "a", Owner: 1})
				return err
			},
		},
		{
			name: "delete zero id",
			op:   OpDelete,
			call: func(repo Repository[*widget]) error {
				return repo.Delete(ctx, 0)
			},
		},
		{
			name: "bulk delete empty list",
			op:   OpBulkDelete,
			call: func(repo Repository[*widget]) error {
				_, err := repo.BulkDelete(ctx, nil)
				return err
			},
		},
		{
			name: "bulk delete with zero id",
			op:   OpBulkDelete,
			call: func(repo Repository[*widget]) error {
				_, err := repo.BulkDelete(ctx, []int64{1, 0})
				return err
			},
		},
		{
			name: "bulk delete too many ids",
			op:   OpBulkDelete,
			call: func(repo Repository[*widget]) error {
				_, err := repo.BulkDelete(ctx, make([]int64, MaxBulkDelete+1))
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := newMemoryRepo()
			repo := NewValidationDecorator[*widget](inner, validateWidget)

			err := tt.call(repo)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
			assert.Equal(t, 0, inner.count(tt.op))
		})
	}
}

func TestValidationDecorator_ForwardsValidRequests(t *testing.T) {
	ctx := context.Background()
	inner := newMemoryRepo()
	repo := NewValidationDecorator[*widget](inner, validateWidget)

	created, err := repo.Create(ctx, &widget{Name: "first", Owner: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = repo.FindByOwner(ctx, 3, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultLimit, inner.lastParams.Limit, "defaults are applied")
	assert.Equal(t, pagination.Desc, inner.lastParams.Direction)

	n, err := repo.BulkDelete(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestValidationDecorator_NilValidator(t *testing.T) {
	inner := newMemoryRepo()
	repo := NewValidationDecorator[*widget](inner, nil)

	_, err := repo.Create(context.Background(), &widget{})
	assert.NoError(t, err)
}
