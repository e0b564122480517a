package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	"github.com/allisson/casevault/internal/metrics"
)

// auditLoggerWithMetrics decorates AuditLogger with metrics instrumentation.
type auditLoggerWithMetrics struct {
	next    AuditLogger
	metrics metrics.BusinessMetrics
}

// NewAuditLoggerWithMetrics wraps an AuditLogger with metrics recording.
func NewAuditLoggerWithMetrics(logger AuditLogger, m metrics.BusinessMetrics) AuditLogger {
	return &auditLoggerWithMetrics{
		next:    logger,
		metrics: m,
	}
}

// Append records metrics for audit append operations.
func (a *auditLoggerWithMetrics) Append(
	ctx context.Context,
	event auditDomain.Event,
) (*auditDomain.AuditLogEntry, error) {
	start := time.Now()
	entry, err := a.next.Append(ctx, event)
	a.record(ctx, "audit_append", start, err)
	return entry, err
}

// VerifyChain records metrics for chain verification. A broken chain counts as an error.
func (a *auditLoggerWithMetrics) VerifyChain(
	ctx context.Context,
	opts auditDomain.VerifyOptions,
) (*auditDomain.VerifyResult, error) {
	start := time.Now()
	result, err := a.next.VerifyChain(ctx, opts)
	a.record(ctx, "audit_verify", start, err)
	return result, err
}

// List records metrics for audit log listing.
func (a *auditLoggerWithMetrics) List(
	ctx context.Context,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	start := time.Now()
	entries, err := a.next.List(ctx, filter)
	a.record(ctx, "audit_list", start, err)
	return entries, err
}

func (a *auditLoggerWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "audit", operation, status)
	a.metrics.RecordDuration(ctx, "audit", operation, time.Since(start), status)
}
