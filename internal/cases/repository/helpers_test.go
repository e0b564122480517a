package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
	cryptoService "github.com/allisson/casevault/internal/crypto/service"
	"github.com/allisson/casevault/internal/database"
	"github.com/allisson/casevault/internal/testutil"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestKeyManager returns a KeyManager holding a random, already loaded key.
func newTestKeyManager(t *testing.T) *cryptoService.KeyManager {
	t.Helper()

	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	storage := cryptoService.NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), cryptoDomain.DefaultKeyName, key))

	km := cryptoService.NewKeyManager(storage, cryptoDomain.DefaultKeyName, newTestLogger())
	_, err = km.GetOrCreateKey(context.Background())
	require.NoError(t, err)
	t.Cleanup(km.Close)
	return km
}

// recordingAudit captures appended events in memory.
type recordingAudit struct {
	mu     sync.Mutex
	events []auditDomain.Event
	err    error
}

func (a *recordingAudit) Append(_ context.Context, event auditDomain.Event) (*auditDomain.AuditLogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	a.events = append(a.events, event)
	return &auditDomain.AuditLogEntry{EventType: event.EventType}, nil
}

func (a *recordingAudit) recorded() []auditDomain.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditDomain.Event(nil), a.events...)
}

type fixture struct {
	db        *sql.DB
	txManager database.TxManager
	enc       *cryptoService.EncryptionService
	audit     *recordingAudit
	cases     *SQLiteCaseRepository
	notes     *SQLiteCaseNoteRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupSQLiteDB(t)
	t.Cleanup(func() { testutil.TeardownDB(t, db) })

	txManager := database.NewTxManager(db)
	enc := cryptoService.NewEncryptionService(newTestKeyManager(t))
	audit := &recordingAudit{}

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	opts := Options{
		Encryptor: enc,
		Audit:     audit,
		Logger:    newTestLogger(),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}

	return &fixture{
		db:        db,
		txManager: txManager,
		enc:       enc,
		audit:     audit,
		cases:     NewSQLiteCaseRepository(db, txManager, opts),
		notes:     NewSQLiteCaseNoteRepository(db, txManager, opts),
	}
}

func rawColumn(t *testing.T, db *sql.DB, query string, id int64) string {
	t.Helper()
	var value string
	require.NoError(t, db.QueryRow(query, id).Scan(&value))
	return value
}
