package database

import (
	"fmt"

	apperrors "github.com/allisson/casevault/internal/errors"
)

// StorageError marks a driver failure as ErrStorageUnavailable while keeping the cause in
// the chain, so callers can match both the kind and, for example, context.DeadlineExceeded.
func StorageError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, apperrors.ErrStorageUnavailable, err)
}
