package domain

import (
	"github.com/allisson/casevault/internal/errors"
)

// Audit log errors.
var (
	// ErrAuditChainIntegrity indicates a broken link, a recomputed hash that differs from the
	// stored one, or an invalid seal. It means the stored log was altered.
	ErrAuditChainIntegrity = errors.Wrap(errors.ErrIntegrity, "audit chain integrity violation")

	// ErrInvalidEvent indicates an event failed validation before it was appended.
	ErrInvalidEvent = errors.Wrap(errors.ErrInvalidInput, "invalid audit event")

	// ErrAppendInTransaction indicates Append was called with a transaction in the context.
	// Append owns its own transaction and must run outside any other.
	ErrAppendInTransaction = errors.Wrap(errors.ErrInternal, "audit append inside an outer transaction")
)
