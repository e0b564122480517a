package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	auditService "github.com/allisson/casevault/internal/audit/service"
	"github.com/allisson/casevault/internal/database"
	apperrors "github.com/allisson/casevault/internal/errors"
)

const (
	// DefaultWriteTimeout bounds one append against storage.
	DefaultWriteTimeout = 5 * time.Second

	// DefaultVerifyBatchSize is how many entries VerifyChain loads per query.
	DefaultVerifyBatchSize = 500

	// MaxListLimit caps a single List page.
	MaxListLimit = 1000
)

// Config tunes the audit logger.
type Config struct {
	// WriteTimeout bounds the storage part of one append.
	WriteTimeout time.Duration
	// VerifyBatchSize is the page size of a chain walk.
	VerifyBatchSize int
	// Sealer, when set, signs every new entry and verifies existing seals.
	Sealer auditService.Sealer
}

type auditLogger struct {
	txManager    database.TxManager
	repo         AuditLogRepository
	hasher       auditService.Hasher
	sealer       auditService.Sealer
	logger       *slog.Logger
	writeTimeout time.Duration
	batchSize    int
	now          func() time.Time

	// mu serializes appends inside this process; the IMMEDIATE transaction serializes
	// them against other connections.
	mu sync.Mutex
	// anchored is set once the seal anchor is known to exist. Guarded by mu.
	anchored bool
}

// NewAuditLogger creates the AuditLogger.
func NewAuditLogger(
	txManager database.TxManager,
	repo AuditLogRepository,
	hasher auditService.Hasher,
	logger *slog.Logger,
	cfg Config,
) AuditLogger {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.VerifyBatchSize <= 0 {
		cfg.VerifyBatchSize = DefaultVerifyBatchSize
	}
	return &auditLogger{
		txManager:    txManager,
		repo:         repo,
		hasher:       hasher,
		sealer:       cfg.Sealer,
		logger:       logger,
		writeTimeout: cfg.WriteTimeout,
		batchSize:    cfg.VerifyBatchSize,
		now:          time.Now,
	}
}

// Append reads the last hash, computes the new entry and inserts it as one unit: under the
// in-process mutex and inside a single storage transaction. The sequence is detached from
// ctx cancellation and bounded by the write timeout instead. Storage failures and timeouts
// surface as ErrStorageUnavailable and are not retried here.
func (a *auditLogger) Append(
	ctx context.Context,
	event auditDomain.Event,
) (*auditDomain.AuditLogEntry, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", auditDomain.ErrInvalidEvent, err)
	}
	if database.InTx(ctx) {
		return nil, auditDomain.ErrAppendInTransaction
	}

	details, err := marshalDetails(event.Details)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auditDomain.ErrInvalidEvent, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.writeTimeout)
	defer cancel()

	var (
		entry    *auditDomain.AuditLogEntry
		anchored bool
	)
	err = a.txManager.WithTx(opCtx, func(txCtx context.Context) error {
		last, err := a.repo.Last(txCtx)
		if err != nil {
			return err
		}

		next, err := a.buildEntry(event, details, last)
		if err != nil {
			return err
		}

		if err := a.repo.Create(txCtx, next); err != nil {
			return err
		}
		if a.sealer != nil && !a.anchored {
			if err := a.ensureSealAnchor(txCtx, next); err != nil {
				return err
			}
			anchored = true
		}
		entry = next
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrStorageUnavailable) {
			return nil, err
		}
		return nil, database.StorageError(err, "failed to append audit log")
	}
	if anchored {
		a.anchored = true
	}

	return entry, nil
}

// ensureSealAnchor writes the anchor at entry unless one already exists.
func (a *auditLogger) ensureSealAnchor(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	existing, err := a.repo.SealAnchor(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	anchor := auditDomain.NewSealAnchor(entry)
	anchor.Signature, err = a.sealer.Seal(anchor.Message())
	if err != nil {
		return fmt.Errorf("failed to seal audit anchor: %w", err)
	}
	return a.repo.CreateSealAnchor(ctx, anchor)
}

// buildEntry assigns id and timestamp so (timestamp, id) sorts after last, then computes
// the chained hash and the optional seal.
func (a *auditLogger) buildEntry(
	event auditDomain.Event,
	details []byte,
	last *auditDomain.AuditLogEntry,
) (*auditDomain.AuditLogEntry, error) {
	ts := a.now().UTC().Truncate(time.Millisecond)
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audit log id: %w", err)
	}

	var previousHash *string
	if last != nil {
		// The wall clock may step backwards; never let an entry sort before its predecessor.
		if ts.Before(last.Timestamp) {
			ts = last.Timestamp
		}
		if ts.Equal(last.Timestamp) && id.String() <= last.ID {
			ts = ts.Add(time.Millisecond)
		}
		hash := last.IntegrityHash
		previousHash = &hash
	}

	entry := &auditDomain.AuditLogEntry{
		ID:              id.String(),
		Timestamp:       ts,
		EventType:       event.EventType,
		ResourceType:    event.ResourceType,
		ResourceID:      event.ResourceID,
		Action:          event.Action,
		Details:         details,
		Success:         event.Success,
		ErrorMessage:    event.ErrorMessage,
		PreviousLogHash: previousHash,
	}
	entry.IntegrityHash = a.hasher.Hash(entry, previousHash)

	if a.sealer != nil {
		signature, err := a.sealer.Seal(entry.IntegrityHash)
		if err != nil {
			return nil, fmt.Errorf("failed to seal audit log: %w", err)
		}
		entry.Signature = &signature
	}

	return entry, nil
}

// VerifyChain implements AuditLogger.
func (a *auditLogger) VerifyChain(
	ctx context.Context,
	opts auditDomain.VerifyOptions,
) (*auditDomain.VerifyResult, error) {
	result := &auditDomain.VerifyResult{Valid: true}

	var anchor *auditDomain.SealAnchor
	if a.sealer != nil {
		var err error
		anchor, err = a.repo.SealAnchor(ctx)
		if err != nil {
			return nil, err
		}
		if anchor != nil {
			if err := a.sealer.Verify(anchor.Message(), anchor.Signature); err != nil {
				if !apperrors.Is(err, auditDomain.ErrAuditChainIntegrity) {
					return nil, err
				}
				return a.broken(result, anchor.EntryID, "seal anchor signature mismatch")
			}
		}
	}

	var expectedPrevious *string
	if opts.From != nil {
		predecessor, err := a.repo.LastBefore(ctx, *opts.From)
		if err != nil {
			return nil, err
		}
		if predecessor != nil {
			hash := predecessor.IntegrityHash
			expectedPrevious = &hash
		}
	}

	query := auditDomain.ChainQuery{From: opts.From, To: opts.To, Limit: a.batchSize}
	for {
		batch, err := a.repo.ListChain(ctx, query)
		if err != nil {
			return nil, err
		}

		for _, entry := range batch {
			result.EntriesChecked++

			if reason := a.checkEntry(entry, expectedPrevious, anchor); reason != "" {
				return a.broken(result, entry.ID, reason)
			}

			hash := entry.IntegrityHash
			expectedPrevious = &hash
		}

		if len(batch) < a.batchSize {
			return result, nil
		}
		last := batch[len(batch)-1]
		query.After = &auditDomain.ChainCursor{Timestamp: last.Timestamp, ID: last.ID}
	}
}

func (a *auditLogger) broken(
	result *auditDomain.VerifyResult,
	entryID, reason string,
) (*auditDomain.VerifyResult, error) {
	result.Valid = false
	result.BrokenAtID = entryID
	result.Reason = reason
	a.logger.Error("audit chain broken",
		slog.String("entry_id", entryID),
		slog.String("reason", reason),
		slog.Int64("entries_checked", result.EntriesChecked),
	)
	return result, fmt.Errorf("%w: entry %s: %s", auditDomain.ErrAuditChainIntegrity, entryID, reason)
}

// checkEntry returns why entry does not belong after expectedPrevious, or "". With a
// sealer, entries covered by anchor must be signed; without an anchor every entry must.
func (a *auditLogger) checkEntry(
	entry *auditDomain.AuditLogEntry,
	expectedPrevious *string,
	anchor *auditDomain.SealAnchor,
) string {
	switch {
	case expectedPrevious == nil && entry.PreviousLogHash != nil:
		return "previous_log_hash set on the first entry"
	case expectedPrevious != nil && entry.PreviousLogHash == nil:
		return "previous_log_hash missing"
	case expectedPrevious != nil && *entry.PreviousLogHash != *expectedPrevious:
		return "previous_log_hash does not match the preceding entry"
	}

	if a.hasher.Hash(entry, expectedPrevious) != entry.IntegrityHash {
		return "integrity_hash mismatch"
	}

	if a.sealer == nil {
		return ""
	}
	if entry.Signature == nil {
		if anchor == nil || anchor.Covers(entry) {
			return "signature missing"
		}
		return ""
	}
	if err := a.sealer.Verify(entry.IntegrityHash, *entry.Signature); err != nil {
		return "signature mismatch"
	}
	return ""
}

// List implements AuditLogger.
func (a *auditLogger) List(
	ctx context.Context,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", auditDomain.ErrInvalidEvent, filter.Action)
	}

	entries, err := a.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return entries, nil
}

// marshalDetails renders details once; encoding/json sorts map keys, so the bytes are
// stable and are exactly what gets hashed and stored.
func marshalDetails(details map[string]any) ([]byte, error) {
	if details == nil {
		return []byte("{}"), nil
	}
	out, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit details: %w", err)
	}
	return out, nil
}
