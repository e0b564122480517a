// Package integration provides end-to-end tests that assemble the application through the
// dependency container and drive it through the admin API.
package integration

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/casevault/internal/app"
	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	casesDomain "github.com/allisson/casevault/internal/cases/domain"
	"github.com/allisson/casevault/internal/config"
	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
	"github.com/allisson/casevault/internal/database"
	"github.com/allisson/casevault/internal/repository"
	"github.com/allisson/casevault/internal/testutil"
)

type adminTestContext struct {
	container *app.Container
	handler   http.Handler
	cases     casesPipeline
}

type casesPipeline interface {
	Create(ctx context.Context, entity *casesDomain.Case) (*casesDomain.Case, error)
	FindByID(ctx context.Context, id int64) (*casesDomain.Case, error)
	Update(ctx context.Context, entity *casesDomain.Case) (*casesDomain.Case, error)
}

// setupAdminTestContext provisions a KMS-sealed key, migrates a fresh database and builds
// the admin router.
func setupAdminTestContext(t *testing.T) *adminTestContext {
	t.Helper()
	ctx := context.Background()

	kmsKey := make([]byte, 32)
	_, err := rand.Read(kmsKey)
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := &config.Config{
		DBPath:                  filepath.Join(dir, "casevault.db"),
		DBMaxOpenConnections:    1,
		DBBusyTimeout:           5 * time.Second,
		LogLevel:                "error",
		SecureStorageProvider:   config.SecureStorageKMS,
		EncryptionKeyName:       cryptoDomain.DefaultKeyName,
		KMSKeyURI:               "base64key://" + base64.URLEncoding.EncodeToString(kmsKey),
		SecureStorageDir:        filepath.Join(dir, "keys"),
		CacheTTL:                time.Minute,
		CacheSize:               128,
		AuditWriteTimeout:       5 * time.Second,
		AuditSealEnabled:        true,
		LogDecoratorPosition:    config.LogDecoratorOuter,
		MetricsEnabled:          true,
		MetricsNamespace:        "casevault_it",
		AdminServerHost:         "127.0.0.1",
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 1000,
		RateLimitBurst:          1000,
	}
	require.NoError(t, cfg.Validate())

	container := app.NewContainer(cfg)
	t.Cleanup(func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	})

	keyManager, err := container.NewUnloadedKeyManager(ctx)
	require.NoError(t, err)
	_, err = keyManager.ProvisionKey(ctx)
	require.NoError(t, err)

	db, err := container.DB()
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, database.MigrateUp))

	cases, err := container.CasePipeline(ctx)
	require.NoError(t, err)

	server, err := container.AdminServer(ctx)
	require.NoError(t, err)

	return &adminTestContext{
		container: container,
		handler:   server.GetHandler(),
		cases:     cases,
	}
}

func (tc *adminTestContext) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	tc.handler.ServeHTTP(w, req)
	return w
}

// TestAdminAPI_EndToEnd drives writes through the repository pipeline and checks what the
// admin surface reports about them.
func TestAdminAPI_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tc := setupAdminTestContext(t)

	created, err := tc.cases.Create(ctx, &casesDomain.Case{
		OwnerID:    1,
		Title:      "Intake",
		ClientName: "Jane Doe",
	})
	require.NoError(t, err)

	_, err = tc.cases.Update(ctx, &casesDomain.Case{
		ID:         created.ID + 100,
		OwnerID:    1,
		Title:      "Ghost",
		ClientName: "Nobody",
	})
	require.ErrorIs(t, err, repository.ErrRepositoryNotFound)

	t.Run("HealthAndReadiness", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, tc.get(t, "/health").Code)

		w := tc.get(t, "/ready")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"encryption_key":"ok"`)
	})

	t.Run("ListAuditLogs", func(t *testing.T) {
		w := tc.get(t, "/v1/audit-logs?resource_type=case")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data []struct {
				EventType    string  `json:"event_type"`
				ResourceID   string  `json:"resource_id"`
				Success      bool    `json:"success"`
				ErrorMessage *string `json:"error_message"`
				Signature    *string `json:"signature"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Data, 2)

		// Newest first.
		assert.Equal(t, "case.update.failed", body.Data[0].EventType)
		assert.False(t, body.Data[0].Success)
		require.NotNil(t, body.Data[0].ErrorMessage)
		assert.Equal(t, "entity not found", *body.Data[0].ErrorMessage)

		assert.Equal(t, "case.create", body.Data[1].EventType)
		assert.True(t, body.Data[1].Success)
		assert.NotNil(t, body.Data[1].Signature)

		assert.NotContains(t, w.Body.String(), "Jane Doe")
	})

	t.Run("VerifyIntactChain", func(t *testing.T) {
		w := tc.get(t, "/v1/audit-logs/verify")
		require.Equal(t, http.StatusOK, w.Code)

		var result auditDomain.VerifyResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Valid)
		assert.Equal(t, int64(2), result.EntriesChecked)
	})

	t.Run("Metrics", func(t *testing.T) {
		w := tc.get(t, "/metrics")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "casevault_it_operations_total")
		assert.Contains(t, w.Body.String(), "casevault_it_cache_entries")
	})

	t.Run("ReadOnlySurface", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/v1/audit-logs", nil)
		w := httptest.NewRecorder()
		tc.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DecryptedRead", func(t *testing.T) {
		found, err := tc.cases.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", found.ClientName)
	})

	// Tampering runs last: it breaks the chain for every later subtest.
	t.Run("VerifyTamperedChain", func(t *testing.T) {
		db, err := tc.container.DB()
		require.NoError(t, err)
		testutil.DropAuditLogTriggers(t, db)

		_, err = db.Exec(`UPDATE audit_logs SET resource_id = '2' WHERE event_type = 'case.create'`)
		require.NoError(t, err)

		w := tc.get(t, "/v1/audit-logs/verify")
		require.Equal(t, http.StatusConflict, w.Code)

		var result auditDomain.VerifyResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.BrokenAtID)

		ready := tc.get(t, "/ready")
		require.Equal(t, http.StatusOK, ready.Code)
		assert.Contains(t, ready.Body.String(), `"audit_chain":"broken"`)
		assert.Contains(t, ready.Body.String(), result.BrokenAtID)
	})
}
