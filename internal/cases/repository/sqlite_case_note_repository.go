package repository

import (
	"context"
	"database/sql"
	"errors"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	casesDomain "github.com/allisson/casevault/internal/cases/domain"
	"github.com/allisson/casevault/internal/database"
	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/pagination"
)

const caseNoteColumns = `id, case_id, content, created_at, updated_at`

// SQLiteCaseNoteRepository implements Repository[*CaseNote] for SQLite. The owner of a
// note is its case, so FindByOwner pages by case_id. Content is stored as an envelope.
type SQLiteCaseNoteRepository struct {
	db        *sql.DB
	txManager database.TxManager
	opts      Options
}

// NewSQLiteCaseNoteRepository creates a new SQLite case note repository.
func NewSQLiteCaseNoteRepository(db *sql.DB, txManager database.TxManager, opts Options) *SQLiteCaseNoteRepository {
	return &SQLiteCaseNoteRepository{db: db, txManager: txManager, opts: opts.withDefaults()}
}

// Create encrypts the note content and inserts it. The parent case must exist.
func (r *SQLiteCaseNoteRepository) Create(
	ctx context.Context,
	n *casesDomain.CaseNote,
) (*casesDomain.CaseNote, error) {
	content, err := r.opts.Encryptor.EncryptString(n.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt content")
	}

	created := n.Clone()
	now := r.opts.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		querier := database.GetTx(txCtx, r.db)

		var exists int
		err := querier.QueryRowContext(txCtx, `SELECT 1 FROM cases WHERE id = ?`, created.CaseID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return casesDomain.ErrCaseNotFound
		}
		if err != nil {
			return database.StorageError(err, "failed to look up case")
		}

		result, err := querier.ExecContext(
			txCtx,
			`INSERT INTO case_notes (case_id, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			created.CaseID,
			content,
			formatTime(created.CreatedAt),
			formatTime(created.UpdatedAt),
		)
		if err != nil {
			return database.StorageError(err, "failed to create case note")
		}

		created.ID, err = result.LastInsertId()
		if err != nil {
			return database.StorageError(err, "failed to read case note id")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordSuccess(ctx, r.opts, casesDomain.CaseNoteEntityType, auditDomain.ActionCreate, formatID(created.ID),
		map[string]any{"case_id": created.CaseID})
	return created, nil
}

// FindByID returns the note with its content decrypted.
func (r *SQLiteCaseNoteRepository) FindByID(ctx context.Context, id int64) (*casesDomain.CaseNote, error) {
	querier := database.GetTx(ctx, r.db)

	n, err := r.scan(querier.QueryRowContext(ctx, `SELECT `+caseNoteColumns+` FROM case_notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casesDomain.ErrCaseNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// FindByOwner returns one page of the notes of case caseID.
func (r *SQLiteCaseNoteRepository) FindByOwner(
	ctx context.Context,
	caseID int64,
	params pagination.Params,
) (*pagination.Page[*casesDomain.CaseNote], error) {
	return r.list(ctx, []string{"case_id = ?"}, []any{caseID}, params)
}

// FindAll returns one page of all notes.
func (r *SQLiteCaseNoteRepository) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[*casesDomain.CaseNote], error) {
	return r.list(ctx, nil, nil, params)
}

// Update re-encrypts and replaces the note content. CaseID and CreatedAt are kept from
// storage.
func (r *SQLiteCaseNoteRepository) Update(
	ctx context.Context,
	n *casesDomain.CaseNote,
) (*casesDomain.CaseNote, error) {
	content, err := r.opts.Encryptor.EncryptString(n.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt content")
	}

	updated := n.Clone()
	updated.UpdatedAt = r.opts.Now().UTC()

	var createdAt string
	querier := database.GetTx(ctx, r.db)
	err = querier.QueryRowContext(
		ctx,
		`UPDATE case_notes SET content = ?, updated_at = ? WHERE id = ? RETURNING case_id, created_at`,
		content,
		formatTime(updated.UpdatedAt),
		updated.ID,
	).Scan(&updated.CaseID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casesDomain.ErrCaseNoteNotFound
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to update case note")
	}

	if updated.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, apperrors.Wrap(err, "failed to update case note")
	}

	recordSuccess(ctx, r.opts, casesDomain.CaseNoteEntityType, auditDomain.ActionUpdate, formatID(updated.ID),
		map[string]any{"case_id": updated.CaseID, "fields": []string{"content"}})
	return updated, nil
}

// Delete removes the note.
func (r *SQLiteCaseNoteRepository) Delete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM case_notes WHERE id = ?`, id)
	if err != nil {
		return database.StorageError(err, "failed to delete case note")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return database.StorageError(err, "failed to delete case note")
	}
	if affected == 0 {
		return casesDomain.ErrCaseNoteNotFound
	}

	recordSuccess(ctx, r.opts, casesDomain.CaseNoteEntityType, auditDomain.ActionDelete, formatID(id), nil)
	return nil
}

// BulkDelete removes the existing notes among ids in one transaction and audits each one.
func (r *SQLiteCaseNoteRepository) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	var deleted []int64

	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = bulkDelete(txCtx, database.GetTx(txCtx, r.db), "case_notes", ids)
		return err
	})
	if err != nil {
		return 0, database.StorageError(err, "failed to bulk delete case notes")
	}

	for _, id := range deleted {
		recordSuccess(ctx, r.opts, casesDomain.CaseNoteEntityType, auditDomain.ActionDelete, formatID(id),
			map[string]any{"bulk": true})
	}
	return int64(len(deleted)), nil
}

// Fingerprint returns the stored form of the note without decrypting it.
func (r *SQLiteCaseNoteRepository) Fingerprint(ctx context.Context, id int64) (string, error) {
	querier := database.GetTx(ctx, r.db)

	var caseID int64
	var content, updatedAt string
	err := querier.QueryRowContext(
		ctx,
		`SELECT case_id, content, updated_at FROM case_notes WHERE id = ?`,
		id,
	).Scan(&caseID, &content, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", casesDomain.ErrCaseNoteNotFound
	}
	if err != nil {
		return "", database.StorageError(err, "failed to fingerprint case note")
	}
	return fingerprint(formatID(caseID), content, updatedAt), nil
}

// ReencryptLegacy rewrites every note whose content is not yet an envelope and returns the
// number of rows changed.
func (r *SQLiteCaseNoteRepository) ReencryptLegacy(ctx context.Context) (int, error) {
	changed := 0

	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		querier := database.GetTx(txCtx, r.db)

		type row struct {
			id      int64
			content string
		}
		var rows []row

		result, err := querier.QueryContext(txCtx, `SELECT id, content FROM case_notes ORDER BY id`)
		if err != nil {
			return database.StorageError(err, "failed to read case notes")
		}
		for result.Next() {
			var rec row
			if err := result.Scan(&rec.id, &rec.content); err != nil {
				_ = result.Close()
				return database.StorageError(err, "failed to scan case note")
			}
			rows = append(rows, rec)
		}
		if err := result.Err(); err != nil {
			_ = result.Close()
			return database.StorageError(err, "failed to iterate case notes")
		}
		_ = result.Close()

		for _, row := range rows {
			content, ok, err := reencryptValue(r.opts.Encryptor, row.content)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			_, err = querier.ExecContext(txCtx, `UPDATE case_notes SET content = ? WHERE id = ?`, content, row.id)
			if err != nil {
				return database.StorageError(err, "failed to re-encrypt case note")
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		recordSuccess(ctx, r.opts, casesDomain.CaseNoteEntityType, auditDomain.ActionUpdate, "*",
			map[string]any{"reencrypted": changed})
	}
	return changed, nil
}

func (r *SQLiteCaseNoteRepository) list(
	ctx context.Context,
	where []string,
	args []any,
	params pagination.Params,
) (*pagination.Page[*casesDomain.CaseNote], error) {
	query, args, err := pageQuery(`SELECT `+caseNoteColumns+` FROM case_notes`, where, args, params)
	if err != nil {
		return nil, err
	}

	querier := database.GetTx(ctx, r.db)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.StorageError(err, "failed to list case notes")
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]*casesDomain.CaseNote, 0)
	for rows.Next() {
		n, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, database.StorageError(err, "failed to iterate case notes")
	}

	return buildPage(items, params), nil
}

func (r *SQLiteCaseNoteRepository) scan(row rowScanner) (*casesDomain.CaseNote, error) {
	var (
		n                    casesDomain.CaseNote
		content              string
		createdAt, updatedAt string
	)
	err := row.Scan(&n.ID, &n.CaseID, &content, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to scan case note")
	}

	if n.Content, err = r.opts.Encryptor.DecryptString(content); err != nil {
		return nil, apperrors.Wrapf(err, "failed to decrypt content of case note %d", n.ID)
	}
	if n.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}
