// Package repository persists cases and case notes in SQLite, encrypting sensitive
// columns on write and recording every successful mutation in the audit log.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	cryptoService "github.com/allisson/casevault/internal/crypto/service"
	"github.com/allisson/casevault/internal/pagination"
	"github.com/allisson/casevault/internal/repository"
)

// Options holds the collaborators shared by the SQLite entity repositories.
type Options struct {
	// Encryptor protects sensitive columns.
	Encryptor cryptoService.FieldEncryptor
	// Audit records successful mutations. Optional.
	Audit repository.AuditRecorder
	// Logger reports audit failures that do not fail the mutation.
	Logger *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// recordSuccess appends the audit entry of a committed operation. The data change already
// happened, so an audit failure is logged rather than returned.
func recordSuccess(
	ctx context.Context,
	opts Options,
	entityType string,
	action auditDomain.Action,
	resourceID string,
	details map[string]any,
) {
	if opts.Audit == nil {
		return
	}
	_, err := opts.Audit.Append(ctx, auditDomain.Event{
		EventType:    entityType + "." + string(action),
		ResourceType: entityType,
		ResourceID:   resourceID,
		Action:       action,
		Details:      details,
		Success:      true,
	})
	if err != nil {
		opts.Logger.Error("failed to record audit entry",
			slog.String("entity_type", entityType),
			slog.String("action", string(action)),
			slog.String("resource_id", resourceID),
			slog.Any("error", err),
		)
	}
}

// pageQuery appends cursor, order and limit clauses for id-keyed pagination. One extra
// row is requested to learn whether a next page exists.
func pageQuery(query string, where []string, args []any, params pagination.Params) (string, []any, error) {
	params = params.Normalized()

	comparison, order := "<", "DESC"
	if params.Direction == pagination.Asc {
		comparison, order = ">", "ASC"
	}

	if params.Cursor != "" {
		after, err := pagination.DecodeCursor(params.Cursor)
		if err != nil {
			return "", nil, err
		}
		where = append(where, "id "+comparison+" ?")
		args = append(args, after)
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id " + order + " LIMIT ?"
	args = append(args, params.Limit+1)

	return query, args, nil
}

// buildPage trims the lookahead row and sets the next cursor.
func buildPage[T repository.Entity[T]](items []T, params pagination.Params) *pagination.Page[T] {
	params = params.Normalized()
	page := &pagination.Page[T]{Items: items}
	if len(items) > params.Limit {
		page.Items = items[:params.Limit]
		page.NextCursor = pagination.EncodeCursor(page.Items[len(page.Items)-1].GetID())
	}
	return page
}

// inClause returns "?, ?, ?" for n placeholders and the ids as arguments.
func inClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}

// reencryptValue returns the envelope form of a stored value that is not yet an envelope.
// Unversioned legacy ciphertext is opened first; anything else is treated as plaintext.
func reencryptValue(enc cryptoService.FieldEncryptor, stored string) (string, bool, error) {
	if enc.IsEncrypted(stored) {
		return stored, false, nil
	}
	plaintext := stored
	if opened, ok := enc.OpenLegacy(stored); ok {
		plaintext = opened
	}
	out, err := enc.EncryptString(plaintext)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(column, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return t, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// fingerprint joins stored column values with the ASCII unit separator.
func fingerprint(values ...string) string {
	return strings.Join(values, "\x1f")
}
