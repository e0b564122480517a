package usecase

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	auditRepository "github.com/allisson/casevault/internal/audit/repository"
	auditService "github.com/allisson/casevault/internal/audit/service"
	"github.com/allisson/casevault/internal/audit/usecase/mocks"
	"github.com/allisson/casevault/internal/database"
	apperrors "github.com/allisson/casevault/internal/errors"
	"github.com/allisson/casevault/internal/testutil"
)

type staticKeyProvider struct {
	key []byte
}

func (p *staticKeyProvider) WithKey(fn func(key []byte) error) error {
	return fn(p.key)
}

func newTestSealer(t *testing.T) auditService.Sealer {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return auditService.NewSealer(&staticKeyProvider{key: key})
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuditLogger(t *testing.T, db *sql.DB, cfg Config) *auditLogger {
	t.Helper()
	logger := NewAuditLogger(
		database.NewTxManager(db),
		auditRepository.NewSQLiteAuditLogRepository(db),
		auditService.NewHasher(),
		newTestLogger(),
		cfg,
	)
	return logger.(*auditLogger)
}

func newTestEvent(i int) auditDomain.Event {
	return auditDomain.Event{
		EventType:    "case.create",
		ResourceType: "case",
		ResourceID:   fmt.Sprintf("%d", i+1),
		Action:       auditDomain.ActionCreate,
		Details:      map[string]any{"fields": []string{"title", "client_name"}, "n": i},
		Success:      true,
	}
}

func appendN(t *testing.T, logger AuditLogger, n int) []*auditDomain.AuditLogEntry {
	t.Helper()
	entries := make([]*auditDomain.AuditLogEntry, 0, n)
	for i := 0; i < n; i++ {
		entry, err := logger.Append(context.Background(), newTestEvent(i))
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

// steppingClock returns successive instants step apart, starting at start.
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

func TestAuditLogger_Append_Genesis(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{})

	entry, err := logger.Append(context.Background(), newTestEvent(0))
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Nil(t, entry.PreviousLogHash)
	assert.Len(t, entry.IntegrityHash, 64)
	assert.Nil(t, entry.Signature)
	assert.Equal(t, entry.Timestamp, entry.Timestamp.Truncate(time.Millisecond))
	assert.JSONEq(t, `{"fields":["title","client_name"],"n":0}`, string(entry.Details))
	assert.Equal(t, 1, testutil.CountRows(t, db, "audit_logs"))
}

func TestAuditLogger_Append_NilDetails(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{})
	event := newTestEvent(0)
	event.Details = nil

	entry, err := logger.Append(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(entry.Details))
}

func TestAuditLogger_Append_InvalidEvent(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{})

	event := newTestEvent(0)
	event.Action = "archive"

	_, err := logger.Append(context.Background(), event)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auditDomain.ErrInvalidEvent))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, 0, testutil.CountRows(t, db, "audit_logs"))
}

func TestAuditLogger_Append_RejectsOuterTransaction(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	txManager := database.NewTxManager(db)
	logger := newTestAuditLogger(t, db, Config{})

	err := txManager.WithTx(context.Background(), func(txCtx context.Context) error {
		_, err := logger.Append(txCtx, newTestEvent(0))
		return err
	})
	assert.True(t, errors.Is(err, auditDomain.ErrAppendInTransaction))
}

func TestAuditLogger_Append_SurvivesCallerCancellation(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entry, err := logger.Append(ctx, newTestEvent(0))
	require.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, 1, testutil.CountRows(t, db, "audit_logs"))
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestAuditLogger_Append_StorageTimeout(t *testing.T) {
	repo := &mocks.MockAuditLogRepository{}
	repo.On("Last", mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).
		Once()

	logger := NewAuditLogger(
		passthroughTxManager{},
		repo,
		auditService.NewHasher(),
		newTestLogger(),
		Config{WriteTimeout: 20 * time.Millisecond},
	)

	start := time.Now()
	_, err := logger.Append(context.Background(), newTestEvent(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuditLogger_Append_CreateFailureIsNotRetried(t *testing.T) {
	repo := &mocks.MockAuditLogRepository{}
	createErr := database.StorageError(errors.New("disk I/O error"), "failed to create audit log")
	repo.On("Last", mock.Anything).Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.AuditLogEntry")).Return(createErr).Once()

	logger := NewAuditLogger(passthroughTxManager{}, repo, auditService.NewHasher(), newTestLogger(), Config{})

	_, err := logger.Append(context.Background(), newTestEvent(0))
	assert.True(t, errors.Is(err, apperrors.ErrStorageUnavailable))
	repo.AssertExpectations(t)
}

func TestAuditLogger_ChainPositive(t *testing.T) {
	for _, n := range []int{1, 2, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			db := testutil.SetupSQLiteDB(t)
			defer testutil.TeardownDB(t, db)

			logger := newTestAuditLogger(t, db, Config{VerifyBatchSize: 7, Sealer: newTestSealer(t)})
			entries := appendN(t, logger, n)

			assert.Nil(t, entries[0].PreviousLogHash)
			for i := 1; i < n; i++ {
				require.NotNil(t, entries[i].PreviousLogHash)
				assert.Equal(t, entries[i-1].IntegrityHash, *entries[i].PreviousLogHash)
				assert.False(t, entries[i].Timestamp.Before(entries[i-1].Timestamp))
			}

			result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
			require.NoError(t, err)
			assert.True(t, result.Valid)
			assert.Equal(t, int64(n), result.EntriesChecked)
			assert.Empty(t, result.BrokenAtID)
		})
	}
}

func TestAuditLogger_VerifyChain_Empty(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{})

	result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(0), result.EntriesChecked)
}

func TestAuditLogger_ChainTamper(t *testing.T) {
	const n = 10

	for _, k := range []int{0, 4, n - 1} {
		t.Run(fmt.Sprintf("details changed at %d", k), func(t *testing.T) {
			db := testutil.SetupSQLiteDB(t)
			defer testutil.TeardownDB(t, db)

			logger := newTestAuditLogger(t, db, Config{VerifyBatchSize: 3})
			entries := appendN(t, logger, n)

			testutil.DropAuditLogTriggers(t, db)
			_, err := db.Exec(`UPDATE audit_logs SET details = '{"n":999}' WHERE id = ?`, entries[k].ID)
			require.NoError(t, err)

			result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
			assert.True(t, errors.Is(err, apperrors.ErrIntegrity))
			require.NotNil(t, result)
			assert.False(t, result.Valid)
			assert.Equal(t, entries[k].ID, result.BrokenAtID)
			assert.Equal(t, int64(k+1), result.EntriesChecked)
			assert.Equal(t, "integrity_hash mismatch", result.Reason)
		})
	}

	t.Run("entry removed", func(t *testing.T) {
		db := testutil.SetupSQLiteDB(t)
		defer testutil.TeardownDB(t, db)

		logger := newTestAuditLogger(t, db, Config{})
		entries := appendN(t, logger, n)

		testutil.DropAuditLogTriggers(t, db)
		_, err := db.Exec(`DELETE FROM audit_logs WHERE id = ?`, entries[5].ID)
		require.NoError(t, err)

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
		assert.Equal(t, entries[6].ID, result.BrokenAtID)
		assert.Equal(t, "previous_log_hash does not match the preceding entry", result.Reason)
	})

	t.Run("genesis link forged", func(t *testing.T) {
		db := testutil.SetupSQLiteDB(t)
		defer testutil.TeardownDB(t, db)

		logger := newTestAuditLogger(t, db, Config{})
		entries := appendN(t, logger, 3)

		testutil.DropAuditLogTriggers(t, db)
		_, err := db.Exec(`UPDATE audit_logs SET previous_log_hash = 'forged' WHERE id = ?`, entries[0].ID)
		require.NoError(t, err)

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
		assert.Equal(t, entries[0].ID, result.BrokenAtID)
	})
}

// rewriteChainFrom changes the details of entry k and recomputes every hash from k on,
// the way an attacker with write access to the database file could.
func rewriteChainFrom(t *testing.T, db *sql.DB, k int) {
	t.Helper()
	testutil.DropAuditLogTriggers(t, db)

	repo := auditRepository.NewSQLiteAuditLogRepository(db)
	entries, err := repo.ListChain(context.Background(), auditDomain.ChainQuery{Limit: 1000})
	require.NoError(t, err)

	hasher := auditService.NewHasher()
	var previous *string
	if k > 0 {
		hash := entries[k-1].IntegrityHash
		previous = &hash
	}
	for i := k; i < len(entries); i++ {
		entry := entries[i]
		if i == k {
			entry.Details = []byte(`{"rewritten":true}`)
		}
		entry.PreviousLogHash = previous
		entry.IntegrityHash = hasher.Hash(entry, previous)

		_, err := db.Exec(
			`UPDATE audit_logs SET details = ?, integrity_hash = ?, previous_log_hash = ? WHERE id = ?`,
			string(entry.Details), entry.IntegrityHash, entry.PreviousLogHash, entry.ID,
		)
		require.NoError(t, err)

		hash := entry.IntegrityHash
		previous = &hash
	}
}

func TestAuditLogger_SealDetectsRecomputedChain(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	sealer := newTestSealer(t)
	logger := newTestAuditLogger(t, db, Config{Sealer: sealer})
	entries := appendN(t, logger, 6)
	for _, e := range entries {
		require.NotNil(t, e.Signature)
	}

	rewriteChainFrom(t, db, 2)

	unsealed := newTestAuditLogger(t, db, Config{})
	result, err := unsealed.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
	require.NoError(t, err, "a recomputed chain is consistent without the seal")
	assert.True(t, result.Valid)

	result, err = logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
	assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
	assert.Equal(t, entries[2].ID, result.BrokenAtID)
	assert.Equal(t, "signature mismatch", result.Reason)
}

func stripSignatures(t *testing.T, db *sql.DB, entries []*auditDomain.AuditLogEntry) {
	t.Helper()
	for _, e := range entries {
		_, err := db.Exec(`UPDATE audit_logs SET signature = NULL WHERE id = ?`, e.ID)
		require.NoError(t, err)
	}
}

func TestAuditLogger_SealDetectsStrippedSignatures(t *testing.T) {
	setup := func(t *testing.T) (*sql.DB, *auditLogger, []*auditDomain.AuditLogEntry) {
		t.Helper()
		db := testutil.SetupSQLiteDB(t)
		t.Cleanup(func() { _ = db.Close() })

		logger := newTestAuditLogger(t, db, Config{Sealer: newTestSealer(t)})
		entries := appendN(t, logger, 6)
		rewriteChainFrom(t, db, 2)
		return db, logger, entries
	}

	t.Run("every signature removed", func(t *testing.T) {
		db, logger, entries := setup(t)
		stripSignatures(t, db, entries)

		unsealed := newTestAuditLogger(t, db, Config{})
		result, err := unsealed.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		require.NoError(t, err)
		assert.True(t, result.Valid)

		result, err = logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
		require.NotNil(t, result)
		assert.False(t, result.Valid)
		assert.Equal(t, entries[0].ID, result.BrokenAtID)
		assert.Equal(t, "signature missing", result.Reason)
	})

	t.Run("signatures removed from the forged entry on", func(t *testing.T) {
		db, logger, entries := setup(t)
		stripSignatures(t, db, entries[2:])

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
		assert.Equal(t, entries[2].ID, result.BrokenAtID)
		assert.Equal(t, "signature missing", result.Reason)
	})

	t.Run("anchor deleted as well", func(t *testing.T) {
		db, logger, entries := setup(t)
		stripSignatures(t, db, entries)
		_, err := db.Exec(`DELETE FROM audit_seal_anchor`)
		require.NoError(t, err)

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
		assert.Equal(t, entries[0].ID, result.BrokenAtID)
		assert.Equal(t, "signature missing", result.Reason)
	})

	t.Run("anchor moved past the forgery", func(t *testing.T) {
		db, logger, entries := setup(t)
		stripSignatures(t, db, entries[:5])
		_, err := db.Exec(
			`UPDATE audit_seal_anchor SET entry_id = ?, timestamp = ?`,
			entries[5].ID, auditDomain.FormatTimestamp(entries[5].Timestamp),
		)
		require.NoError(t, err)

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
		assert.Equal(t, entries[5].ID, result.BrokenAtID)
		assert.Equal(t, "seal anchor signature mismatch", result.Reason)
		assert.Equal(t, int64(0), result.EntriesChecked)
	})
}

func TestAuditLogger_Append_WritesSealAnchorOnce(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	sealer := newTestSealer(t)
	entries := appendN(t, newTestAuditLogger(t, db, Config{Sealer: sealer}), 3)
	appendN(t, newTestAuditLogger(t, db, Config{Sealer: sealer}), 2)

	anchor, err := auditRepository.NewSQLiteAuditLogRepository(db).SealAnchor(context.Background())
	require.NoError(t, err)
	require.NotNil(t, anchor)
	assert.Equal(t, entries[0].ID, anchor.EntryID)
	assert.NoError(t, sealer.Verify(anchor.Message(), anchor.Signature))
	assert.Equal(t, 1, testutil.CountRows(t, db, "audit_seal_anchor"))
}

func TestAuditLogger_Append_UnsealedWritesNoAnchor(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	appendN(t, newTestAuditLogger(t, db, Config{}), 2)
	assert.Equal(t, 0, testutil.CountRows(t, db, "audit_seal_anchor"))
}

func TestAuditLogger_VerifyChain_AcceptsUnsealedEntries(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	appendN(t, newTestAuditLogger(t, db, Config{}), 3)

	sealed := newTestAuditLogger(t, db, Config{Sealer: newTestSealer(t)})
	appendN(t, sealed, 2)

	result, err := sealed.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(5), result.EntriesChecked)

	// Unsigned entries after the first sealed one are not accepted.
	appendN(t, newTestAuditLogger(t, db, Config{}), 1)
	result, err = sealed.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
	assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
	assert.Equal(t, "signature missing", result.Reason)
}

func TestAuditLogger_VerifyChain_Range(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{VerifyBatchSize: 2})
	logger.now = steppingClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), time.Minute)
	entries := appendN(t, logger, 10)

	from := entries[3].Timestamp
	to := entries[7].Timestamp

	result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{From: &from, To: &to})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(4), result.EntriesChecked)

	// Damage before the range does not affect it; damage inside does.
	testutil.DropAuditLogTriggers(t, db)
	_, err = db.Exec(`UPDATE audit_logs SET resource_id = 'x' WHERE id = ?`, entries[1].ID)
	require.NoError(t, err)

	result, err = logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{From: &from, To: &to})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = db.Exec(`UPDATE audit_logs SET resource_id = 'x' WHERE id = ?`, entries[5].ID)
	require.NoError(t, err)

	result, err = logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{From: &from, To: &to})
	assert.True(t, errors.Is(err, auditDomain.ErrAuditChainIntegrity))
	assert.Equal(t, entries[5].ID, result.BrokenAtID)
	assert.Equal(t, int64(3), result.EntriesChecked)
}

func TestAuditLogger_Append_ClockSteps(t *testing.T) {
	t.Run("clock moves backwards", func(t *testing.T) {
		db := testutil.SetupSQLiteDB(t)
		defer testutil.TeardownDB(t, db)

		logger := newTestAuditLogger(t, db, Config{})
		logger.now = steppingClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), -time.Hour)
		entries := appendN(t, logger, 5)

		for i := 1; i < len(entries); i++ {
			assert.True(t, entries[i].Timestamp.After(entries[i-1].Timestamp) ||
				(entries[i].Timestamp.Equal(entries[i-1].Timestamp) && entries[i].ID > entries[i-1].ID))
		}

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("frozen clock", func(t *testing.T) {
		db := testutil.SetupSQLiteDB(t)
		defer testutil.TeardownDB(t, db)

		logger := newTestAuditLogger(t, db, Config{VerifyBatchSize: 4})
		logger.now = steppingClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), 0)
		entries := appendN(t, logger, 20)

		repo := auditRepository.NewSQLiteAuditLogRepository(db)
		stored, err := repo.ListChain(context.Background(), auditDomain.ChainQuery{Limit: 100})
		require.NoError(t, err)
		require.Len(t, stored, len(entries))
		for i := range entries {
			assert.Equal(t, entries[i].ID, stored[i].ID, "storage order equals append order")
		}

		result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})
}

func TestAuditLogger_ConcurrentAppend(t *testing.T) {
	for _, m := range []int{2, 10, 50} {
		t.Run(fmt.Sprintf("m=%d", m), func(t *testing.T) {
			defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

			db := testutil.SetupSQLiteDB(t)
			defer testutil.TeardownDB(t, db)

			logger := newTestAuditLogger(t, db, Config{Sealer: newTestSealer(t)})

			var g errgroup.Group
			for i := 0; i < m; i++ {
				g.Go(func() error {
					_, err := logger.Append(context.Background(), newTestEvent(i))
					return err
				})
			}
			require.NoError(t, g.Wait())

			assert.Equal(t, m, testutil.CountRows(t, db, "audit_logs"))

			var forks int
			err := db.QueryRow(
				`SELECT COUNT(*) FROM (SELECT previous_log_hash FROM audit_logs
				 GROUP BY previous_log_hash HAVING COUNT(*) > 1)`,
			).Scan(&forks)
			require.NoError(t, err)
			assert.Equal(t, 0, forks)

			result, err := logger.VerifyChain(context.Background(), auditDomain.VerifyOptions{})
			require.NoError(t, err)
			assert.True(t, result.Valid)
			assert.Equal(t, int64(m), result.EntriesChecked)
		})
	}
}

func TestAuditLogger_List(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	logger := newTestAuditLogger(t, db, Config{})
	entries := appendN(t, logger, 4)

	t.Run("default limit returns everything newest first", func(t *testing.T) {
		got, err := logger.List(context.Background(), auditDomain.AuditLogFilter{})
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, entries[3].ID, got[0].ID)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := logger.List(context.Background(), auditDomain.AuditLogFilter{Action: "archive"})
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})
}
