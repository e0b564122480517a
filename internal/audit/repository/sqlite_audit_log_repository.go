// Package repository persists audit log entries in SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	"github.com/allisson/casevault/internal/database"
	apperrors "github.com/allisson/casevault/internal/errors"
)

const auditLogColumns = `id, timestamp, event_type, resource_type, resource_id, action, details,
	success, error_message, integrity_hash, previous_log_hash, signature`

// SQLiteAuditLogRepository implements append-only AuditLogEntry persistence for SQLite.
// It has no update or delete methods, and the schema rejects both with triggers.
type SQLiteAuditLogRepository struct {
	db *sql.DB
}

// NewSQLiteAuditLogRepository creates a new SQLite audit log repository.
func NewSQLiteAuditLogRepository(db *sql.DB) *SQLiteAuditLogRepository {
	return &SQLiteAuditLogRepository{db: db}
}

// Create inserts a fully computed entry. Uses transaction support via database.GetTx().
func (s *SQLiteAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		auditDomain.FormatTimestamp(entry.Timestamp),
		entry.EventType,
		entry.ResourceType,
		entry.ResourceID,
		string(entry.Action),
		string(entry.Details),
		entry.Success,
		entry.ErrorMessage,
		entry.IntegrityHash,
		entry.PreviousLogHash,
		entry.Signature,
	)
	if err != nil {
		return database.StorageError(err, "failed to create audit log")
	}
	return nil
}

// Last returns the newest entry in (timestamp, id) order, or nil for an empty log.
func (s *SQLiteAuditLogRepository) Last(ctx context.Context) (*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs ORDER BY timestamp DESC, id DESC LIMIT 1`

	entry, err := scanAuditLog(querier.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to read last audit log")
	}
	return entry, nil
}

// LastBefore returns the newest entry strictly before ts, or nil when none exists.
func (s *SQLiteAuditLogRepository) LastBefore(
	ctx context.Context,
	ts time.Time,
) (*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs
			  WHERE timestamp < ?
			  ORDER BY timestamp DESC, id DESC LIMIT 1`

	entry, err := scanAuditLog(querier.QueryRowContext(ctx, query, auditDomain.FormatTimestamp(ts)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to read preceding audit log")
	}
	return entry, nil
}

// ListChain returns the next batch of a chain walk in (timestamp, id) order.
func (s *SQLiteAuditLogRepository) ListChain(
	ctx context.Context,
	q auditDomain.ChainQuery,
) ([]*auditDomain.AuditLogEntry, error) {
	var (
		where []string
		args  []any
	)

	if q.After != nil {
		ts := auditDomain.FormatTimestamp(q.After.Timestamp)
		where = append(where, "(timestamp > ? OR (timestamp = ? AND id > ?))")
		args = append(args, ts, ts, q.After.ID)
	}
	if q.From != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, auditDomain.FormatTimestamp(*q.From))
	}
	if q.To != nil {
		where = append(where, "timestamp < ?")
		args = append(args, auditDomain.FormatTimestamp(*q.To))
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY timestamp ASC, id ASC LIMIT ?`
	args = append(args, q.Limit)

	return s.query(ctx, query, args...)
}

// List returns entries matching filter, newest first.
func (s *SQLiteAuditLogRepository) List(
	ctx context.Context,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	var (
		where []string
		args  []any
	)

	if filter.ResourceType != "" {
		where = append(where, "resource_type = ?")
		args = append(args, filter.ResourceType)
	}
	if filter.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Success != nil {
		where = append(where, "success = ?")
		args = append(args, *filter.Success)
	}
	if filter.From != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, auditDomain.FormatTimestamp(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "timestamp < ?")
		args = append(args, auditDomain.FormatTimestamp(*filter.To))
	}

	query := `SELECT ` + auditLogColumns + ` FROM audit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	return s.query(ctx, query, args...)
}

// SealAnchor returns the seal anchor, or nil when none was written.
func (s *SQLiteAuditLogRepository) SealAnchor(ctx context.Context) (*auditDomain.SealAnchor, error) {
	querier := database.GetTx(ctx, s.db)

	var (
		anchor    auditDomain.SealAnchor
		timestamp string
	)
	err := querier.QueryRowContext(
		ctx,
		`SELECT entry_id, timestamp, signature FROM audit_seal_anchor WHERE id = 1`,
	).Scan(&anchor.EntryID, &timestamp, &anchor.Signature)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to read audit seal anchor")
	}

	anchor.Timestamp, err = auditDomain.ParseTimestamp(timestamp)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid timestamp on audit seal anchor")
	}
	return &anchor, nil
}

// CreateSealAnchor writes the single anchor row. A second write fails on the primary key.
func (s *SQLiteAuditLogRepository) CreateSealAnchor(ctx context.Context, anchor *auditDomain.SealAnchor) error {
	querier := database.GetTx(ctx, s.db)

	_, err := querier.ExecContext(
		ctx,
		`INSERT INTO audit_seal_anchor (id, entry_id, timestamp, signature) VALUES (1, ?, ?, ?)`,
		anchor.EntryID,
		auditDomain.FormatTimestamp(anchor.Timestamp),
		anchor.Signature,
	)
	if err != nil {
		return database.StorageError(err, "failed to create audit seal anchor")
	}
	return nil
}

func (s *SQLiteAuditLogRepository) query(
	ctx context.Context,
	query string,
	args ...any,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, s.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.StorageError(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditLogEntry, 0)
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, database.StorageError(err, "failed to scan audit log")
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, database.StorageError(err, "failed to iterate audit logs")
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditLog(row rowScanner) (*auditDomain.AuditLogEntry, error) {
	var (
		entry     auditDomain.AuditLogEntry
		timestamp string
		action    string
		details   string
	)

	err := row.Scan(
		&entry.ID,
		&timestamp,
		&entry.EventType,
		&entry.ResourceType,
		&entry.ResourceID,
		&action,
		&details,
		&entry.Success,
		&entry.ErrorMessage,
		&entry.IntegrityHash,
		&entry.PreviousLogHash,
		&entry.Signature,
	)
	if err != nil {
		return nil, err
	}

	entry.Timestamp, err = auditDomain.ParseTimestamp(timestamp)
	if err != nil {
		return nil, apperrors.Wrapf(err, "invalid timestamp on audit log %s", entry.ID)
	}
	entry.Action = auditDomain.Action(action)
	entry.Details = []byte(details)

	return &entry, nil
}
