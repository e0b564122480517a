package domain

import (
	"github.com/allisson/casevault/internal/errors"
)

// Case errors.
var (
	// ErrCaseNotFound indicates the case does not exist.
	ErrCaseNotFound = errors.Wrap(errors.ErrNotFound, "case not found")

	// ErrCaseNoteNotFound indicates the note does not exist.
	ErrCaseNoteNotFound = errors.Wrap(errors.ErrNotFound, "case note not found")
)
