package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
)

// Chain states reported by ChainStatus.
const (
	ChainUnverified = "unverified"
	ChainOK         = "ok"
	ChainBroken     = "broken"
)

// ChainSnapshot is the last known verification outcome.
type ChainSnapshot struct {
	State          string    `json:"state"`
	BrokenAtID     string    `json:"broken_at_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	EntriesChecked int64     `json:"entries_checked"`
	CheckedAt      time.Time `json:"checked_at,omitempty"`
}

// ChainStatus holds the outcome of the latest chain verification. A broken result sticks
// until a later full walk passes; a passing ranged walk says nothing about the rest of the
// chain and leaves the state alone.
type ChainStatus struct {
	mu       sync.RWMutex
	snapshot ChainSnapshot
}

// NewChainStatus returns a status that has not seen a verification yet.
func NewChainStatus() *ChainStatus {
	return &ChainStatus{snapshot: ChainSnapshot{State: ChainUnverified}}
}

// Record folds a VerifyChain outcome into the status. Errors other than a broken chain are
// ignored.
func (s *ChainStatus) Record(opts auditDomain.VerifyOptions, result *auditDomain.VerifyResult, err error) {
	if result == nil || (err != nil && !errors.Is(err, auditDomain.ErrAuditChainIntegrity)) {
		return
	}
	fullWalk := opts.From == nil && opts.To == nil
	if result.Valid && !fullWalk {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = ChainSnapshot{
		State:          ChainOK,
		EntriesChecked: result.EntriesChecked,
		CheckedAt:      time.Now().UTC(),
	}
	if !result.Valid {
		s.snapshot.State = ChainBroken
		s.snapshot.BrokenAtID = result.BrokenAtID
		s.snapshot.Reason = result.Reason
	}
}

// Snapshot returns a copy of the current status.
func (s *ChainStatus) Snapshot() ChainSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// auditLoggerWithChainStatus feeds every verification into a ChainStatus.
type auditLoggerWithChainStatus struct {
	next   AuditLogger
	status *ChainStatus
}

// NewAuditLoggerWithChainStatus wraps an AuditLogger so each VerifyChain call updates status.
func NewAuditLoggerWithChainStatus(logger AuditLogger, status *ChainStatus) AuditLogger {
	return &auditLoggerWithChainStatus{next: logger, status: status}
}

func (a *auditLoggerWithChainStatus) Append(
	ctx context.Context,
	event auditDomain.Event,
) (*auditDomain.AuditLogEntry, error) {
	return a.next.Append(ctx, event)
}

func (a *auditLoggerWithChainStatus) VerifyChain(
	ctx context.Context,
	opts auditDomain.VerifyOptions,
) (*auditDomain.VerifyResult, error) {
	result, err := a.next.VerifyChain(ctx, opts)
	a.status.Record(opts, result, err)
	return result, err
}

func (a *auditLoggerWithChainStatus) List(
	ctx context.Context,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	return a.next.List(ctx, filter)
}
