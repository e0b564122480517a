// Package testutil provides testing utilities for database integration tests.
//
// Every test gets its own SQLite file under t.TempDir(), migrated to the latest schema:
//
//	db := testutil.SetupSQLiteDB(t)
//	defer testutil.TeardownDB(t, db)
//
// Tamper tests that need to rewrite audit rows first remove the append-only triggers:
//
//	testutil.DropAuditLogTriggers(t, db)
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allisson/casevault/internal/database"
)

// SQLiteConfig returns a database config pointing at a fresh file in the test temp dir.
func SQLiteConfig(t *testing.T) database.Config {
	t.Helper()
	return database.Config{
		Path:               filepath.Join(t.TempDir(), "casevault_test.db"),
		MaxOpenConnections: 1,
		BusyTimeout:        5 * time.Second,
	}
}

// SetupSQLiteDB creates a new SQLite database connection and runs migrations.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(SQLiteConfig(t))
	require.NoError(t, err, "failed to connect to sqlite")

	err = database.RunMigrations(db, database.MigrateUp)
	require.NoError(t, err, "failed to run sqlite migrations")

	return db
}

// TeardownDB closes the database connection and cleans up.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db != nil {
		err := db.Close()
		require.NoError(t, err, "failed to close database connection")
	}
}

// DropAuditLogTriggers removes the append-only guards so a test can simulate an attacker
// with direct write access to the database file.
func DropAuditLogTriggers(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec("DROP TRIGGER IF EXISTS audit_logs_no_update")
	require.NoError(t, err)
	_, err = db.Exec("DROP TRIGGER IF EXISTS audit_logs_no_delete")
	require.NoError(t, err)
	_, err = db.Exec("DROP TRIGGER IF EXISTS audit_seal_anchor_no_update")
	require.NoError(t, err)
	_, err = db.Exec("DROP TRIGGER IF EXISTS audit_seal_anchor_no_delete")
	require.NoError(t, err)
}

// CreateTestCase inserts a bare case row (plaintext columns) and returns its id.
// Use it as a foreign key fixture for case note tests.
func CreateTestCase(t *testing.T, db *sql.DB, ownerID int64, title string) int64 {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := db.Exec(
		`INSERT INTO cases (owner_id, title, client_name, description, status, created_at, updated_at)
		VALUES (?, ?, '', '', 'open', ?, ?)`,
		ownerID, title, now, now,
	)
	require.NoError(t, err, "failed to create test case")

	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	//nolint:gosec // table names come from tests
	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}
