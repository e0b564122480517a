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

const caseColumns = `id, owner_id, title, client_name, description, status, created_at, updated_at`

// SQLiteCaseRepository implements Repository[*Case] for SQLite. ClientName and Description
// are stored as encryption envelopes.
type SQLiteCaseRepository struct {
	db        *sql.DB
	txManager database.TxManager
	opts      Options
}

// NewSQLiteCaseRepository creates a new SQLite case repository.
func NewSQLiteCaseRepository(db *sql.DB, txManager database.TxManager, opts Options) *SQLiteCaseRepository {
	return &SQLiteCaseRepository{db: db, txManager: txManager, opts: opts.withDefaults()}
}

// Create encrypts the sensitive fields and inserts the case.
func (r *SQLiteCaseRepository) Create(ctx context.Context, c *casesDomain.Case) (*casesDomain.Case, error) {
	clientName, description, err := r.encryptFields(c)
	if err != nil {
		return nil, err
	}

	created := c.Clone()
	if created.Status == "" {
		created.Status = casesDomain.CaseStatusOpen
	}
	now := r.opts.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	querier := database.GetTx(ctx, r.db)
	result, err := querier.ExecContext(
		ctx,
		`INSERT INTO cases (owner_id, title, client_name, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.OwnerID,
		created.Title,
		clientName,
		description,
		created.Status,
		formatTime(created.CreatedAt),
		formatTime(created.UpdatedAt),
	)
	if err != nil {
		return nil, database.StorageError(err, "failed to create case")
	}

	created.ID, err = result.LastInsertId()
	if err != nil {
		return nil, database.StorageError(err, "failed to read case id")
	}

	recordSuccess(ctx, r.opts, casesDomain.CaseEntityType, auditDomain.ActionCreate, formatID(created.ID),
		map[string]any{"owner_id": created.OwnerID})
	return created, nil
}

// FindByID returns the case with its sensitive fields decrypted.
func (r *SQLiteCaseRepository) FindByID(ctx context.Context, id int64) (*casesDomain.Case, error) {
	querier := database.GetTx(ctx, r.db)

	c, err := r.scan(querier.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casesDomain.ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByOwner returns one page of the cases of ownerID.
func (r *SQLiteCaseRepository) FindByOwner(
	ctx context.Context,
	ownerID int64,
	params pagination.Params,
) (*pagination.Page[*casesDomain.Case], error) {
	return r.list(ctx, []string{"owner_id = ?"}, []any{ownerID}, params)
}

// FindAll returns one page of all cases.
func (r *SQLiteCaseRepository) FindAll(
	ctx context.Context,
	params pagination.Params,
) (*pagination.Page[*casesDomain.Case], error) {
	return r.list(ctx, nil, nil, params)
}

// Update re-encrypts the sensitive fields and replaces the mutable columns. OwnerID and
// CreatedAt are kept from storage.
func (r *SQLiteCaseRepository) Update(ctx context.Context, c *casesDomain.Case) (*casesDomain.Case, error) {
	clientName, description, err := r.encryptFields(c)
	if err != nil {
		return nil, err
	}

	updated := c.Clone()
	if updated.Status == "" {
		updated.Status = casesDomain.CaseStatusOpen
	}
	updated.UpdatedAt = r.opts.Now().UTC()

	var createdAt string
	querier := database.GetTx(ctx, r.db)
	err = querier.QueryRowContext(
		ctx,
		`UPDATE cases SET title = ?, client_name = ?, description = ?, status = ?, updated_at = ?
		 WHERE id = ?
		 RETURNING owner_id, created_at`,
		updated.Title,
		clientName,
		description,
		updated.Status,
		formatTime(updated.UpdatedAt),
		updated.ID,
	).Scan(&updated.OwnerID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casesDomain.ErrCaseNotFound
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to update case")
	}

	if updated.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, apperrors.Wrap(err, "failed to update case")
	}

	recordSuccess(ctx, r.opts, casesDomain.CaseEntityType, auditDomain.ActionUpdate, formatID(updated.ID),
		map[string]any{"fields": []string{"title", "client_name", "description", "status"}})
	return updated, nil
}

// Delete removes the case and, through the foreign key, its notes.
func (r *SQLiteCaseRepository) Delete(ctx context.Context, id int64) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return database.StorageError(err, "failed to delete case")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return database.StorageError(err, "failed to delete case")
	}
	if affected == 0 {
		return casesDomain.ErrCaseNotFound
	}

	recordSuccess(ctx, r.opts, casesDomain.CaseEntityType, auditDomain.ActionDelete, formatID(id),
		map[string]any{"cascade": casesDomain.CaseNoteEntityType})
	return nil
}

// BulkDelete removes the existing cases among ids in one transaction and audits each one.
func (r *SQLiteCaseRepository) BulkDelete(ctx context.Context, ids []int64) (int64, error) {
	var deleted []int64

	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = bulkDelete(txCtx, database.GetTx(txCtx, r.db), "cases", ids)
		return err
	})
	if err != nil {
		return 0, database.StorageError(err, "failed to bulk delete cases")
	}

	for _, id := range deleted {
		recordSuccess(ctx, r.opts, casesDomain.CaseEntityType, auditDomain.ActionDelete, formatID(id),
			map[string]any{"bulk": true, "cascade": casesDomain.CaseNoteEntityType})
	}
	return int64(len(deleted)), nil
}

// Fingerprint returns the stored form of the case without decrypting it.
func (r *SQLiteCaseRepository) Fingerprint(ctx context.Context, id int64) (string, error) {
	querier := database.GetTx(ctx, r.db)

	var title, clientName, description, status, updatedAt string
	err := querier.QueryRowContext(
		ctx,
		`SELECT title, client_name, description, status, updated_at FROM cases WHERE id = ?`,
		id,
	).Scan(&title, &clientName, &description, &status, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", casesDomain.ErrCaseNotFound
	}
	if err != nil {
		return "", database.StorageError(err, "failed to fingerprint case")
	}
	return fingerprint(title, clientName, description, status, updatedAt), nil
}

// ReencryptLegacy rewrites every sensitive value that is not yet an envelope: legacy
// plaintext and unversioned legacy ciphertext. It returns the number of rows changed.
func (r *SQLiteCaseRepository) ReencryptLegacy(ctx context.Context) (int, error) {
	changed := 0

	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		querier := database.GetTx(txCtx, r.db)

		type row struct {
			id                      int64
			clientName, description string
		}
		var rows []row

		result, err := querier.QueryContext(txCtx, `SELECT id, client_name, description FROM cases ORDER BY id`)
		if err != nil {
			return database.StorageError(err, "failed to read cases")
		}
		for result.Next() {
			var rec row
			if err := result.Scan(&rec.id, &rec.clientName, &rec.description); err != nil {
				_ = result.Close()
				return database.StorageError(err, "failed to scan case")
			}
			rows = append(rows, rec)
		}
		if err := result.Err(); err != nil {
			_ = result.Close()
			return database.StorageError(err, "failed to iterate cases")
		}
		_ = result.Close()

		for _, row := range rows {
			clientName, clientChanged, err := reencryptValue(r.opts.Encryptor, row.clientName)
			if err != nil {
				return err
			}
			description, descriptionChanged, err := reencryptValue(r.opts.Encryptor, row.description)
			if err != nil {
				return err
			}
			if !clientChanged && !descriptionChanged {
				continue
			}

			_, err = querier.ExecContext(
				txCtx,
				`UPDATE cases SET client_name = ?, description = ? WHERE id = ?`,
				clientName, description, row.id,
			)
			if err != nil {
				return database.StorageError(err, "failed to re-encrypt case")
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if changed > 0 {
		recordSuccess(ctx, r.opts, casesDomain.CaseEntityType, auditDomain.ActionUpdate, "*",
			map[string]any{"reencrypted": changed})
	}
	return changed, nil
}

func (r *SQLiteCaseRepository) list(
	ctx context.Context,
	where []string,
	args []any,
	params pagination.Params,
) (*pagination.Page[*casesDomain.Case], error) {
	query, args, err := pageQuery(`SELECT `+caseColumns+` FROM cases`, where, args, params)
	if err != nil {
		return nil, err
	}

	querier := database.GetTx(ctx, r.db)
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.StorageError(err, "failed to list cases")
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]*casesDomain.Case, 0)
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, database.StorageError(err, "failed to iterate cases")
	}

	return buildPage(items, params), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scan reads one row and decrypts its sensitive fields. sql.ErrNoRows is returned as-is.
func (r *SQLiteCaseRepository) scan(row rowScanner) (*casesDomain.Case, error) {
	var (
		c                    casesDomain.Case
		clientName           string
		description          string
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &clientName, &description, &c.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, database.StorageError(err, "failed to scan case")
	}

	if c.ClientName, err = r.opts.Encryptor.DecryptString(clientName); err != nil {
		return nil, apperrors.Wrapf(err, "failed to decrypt client_name of case %d", c.ID)
	}
	if c.Description, err = r.opts.Encryptor.DecryptString(description); err != nil {
		return nil, apperrors.Wrapf(err, "failed to decrypt description of case %d", c.ID)
	}
	if c.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLiteCaseRepository) encryptFields(c *casesDomain.Case) (clientName, description string, err error) {
	if clientName, err = r.opts.Encryptor.EncryptString(c.ClientName); err != nil {
		return "", "", apperrors.Wrap(err, "failed to encrypt client_name")
	}
	if description, err = r.opts.Encryptor.EncryptString(c.Description); err != nil {
		return "", "", apperrors.Wrap(err, "failed to encrypt description")
	}
	return clientName, description, nil
}

// bulkDelete deletes the rows of table whose id is in ids and returns the ids that existed.
func bulkDelete(ctx context.Context, querier database.Querier, table string, ids []int64) ([]int64, error) {
	placeholders, args := inClause(ids)

	//nolint:gosec // table is a package constant
	rows, err := querier.QueryContext(ctx, `SELECT id FROM `+table+` WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	var existing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		existing = append(existing, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(existing) == 0 {
		return nil, nil
	}

	//nolint:gosec // table is a package constant
	if _, err := querier.ExecContext(ctx, `DELETE FROM `+table+` WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return nil, err
	}
	return existing, nil
}
