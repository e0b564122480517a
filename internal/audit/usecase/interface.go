// Package usecase implements the audit logger: serialized appends to the hash chain,
// chain verification and read projections.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

// AuditLogRepository defines the append-only persistence the audit logger needs.
type AuditLogRepository interface {
	// Create inserts a fully computed entry.
	Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error

	// Last returns the newest entry, or nil for an empty log.
	Last(ctx context.Context) (*auditDomain.AuditLogEntry, error)

	// LastBefore returns the newest entry strictly before ts, or nil.
	LastBefore(ctx context.Context, ts time.Time) (*auditDomain.AuditLogEntry, error)

	// ListChain returns the next batch of a chain walk in (timestamp, id) order.
	ListChain(ctx context.Context, q auditDomain.ChainQuery) ([]*auditDomain.AuditLogEntry, error)

	// List returns entries matching filter, newest first.
	List(ctx context.Context, filter auditDomain.AuditLogFilter) ([]*auditDomain.AuditLogEntry, error)

	// SealAnchor returns the seal anchor, or nil when no entry was ever sealed.
	SealAnchor(ctx context.Context) (*auditDomain.SealAnchor, error)

	// CreateSealAnchor stores the anchor. It can be written once.
	CreateSealAnchor(ctx context.Context, anchor *auditDomain.SealAnchor) error
}

// AuditLogger is the audit log's public contract.
type AuditLogger interface {
	// Append adds event to the end of the chain. Appends are totally ordered; a caller
	// cancelling ctx after the write sequence started does not abandon it.
	Append(ctx context.Context, event auditDomain.Event) (*auditDomain.AuditLogEntry, error)

	// VerifyChain walks the chain and recomputes every hash. It never mutates data. When
	// the chain is broken the result describes where, and the error wraps
	// ErrAuditChainIntegrity.
	VerifyChain(ctx context.Context, opts auditDomain.VerifyOptions) (*auditDomain.VerifyResult, error)

	// List returns entries for the read projections, newest first.
	List(ctx context.Context, filter auditDomain.AuditLogFilter) ([]*auditDomain.AuditLogEntry, error)
}
