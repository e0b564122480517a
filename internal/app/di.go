// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditUsecase "github.com/allisson/casevault/internal/audit/usecase"
	"github.com/allisson/casevault/internal/cache"
	casesDomain "github.com/allisson/casevault/internal/cases/domain"
	casesRepository "github.com/allisson/casevault/internal/cases/repository"
	"github.com/allisson/casevault/internal/config"
	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
	cryptoService "github.com/allisson/casevault/internal/crypto/service"
	"github.com/allisson/casevault/internal/database"
	"github.com/allisson/casevault/internal/http"
	"github.com/allisson/casevault/internal/metrics"
	"github.com/allisson/casevault/internal/repository"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	cache           cache.Cache

	// Managers
	txManager database.TxManager

	// Crypto
	kmsService        cryptoService.KMSService
	kmsKeeper         cryptoDomain.KMSKeeper
	secureStorage     cryptoService.SecureStorage
	keyManager        *cryptoService.KeyManager
	encryptionService *cryptoService.EncryptionService

	// Audit
	auditLogger auditUsecase.AuditLogger
	chainStatus *auditUsecase.ChainStatus

	// Repositories
	caseRepo         *casesRepository.SQLiteCaseRepository
	caseNoteRepo     *casesRepository.SQLiteCaseNoteRepository
	casePipeline     repository.Repository[*casesDomain.Case]
	caseNotePipeline repository.Repository[*casesDomain.CaseNote]
	pageGenerations  *repository.PageGenerations

	// Servers
	adminServer *http.Server

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	cacheInit             sync.Once
	kmsServiceInit        sync.Once
	secureStorageInit     sync.Once
	keyManagerInit        sync.Once
	encryptionServiceInit sync.Once
	auditLoggerInit       sync.Once
	caseRepoInit          sync.Once
	caseNoteRepoInit      sync.Once
	casePipelineInit      sync.Once
	caseNotePipelineInit  sync.Once
	adminServerInit       sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:          cfg,
		chainStatus:     auditUsecase.NewChainStatus(),
		pageGenerations: repository.NewPageGenerations(),
		initErrors:      make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It opens the SQLite database on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the Prometheus-backed metrics provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the operation metrics recorder. It is a no-op when metrics are
// disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Cache returns the shared decrypted-entity cache.
func (c *Container) Cache() (cache.Cache, error) {
	var err error
	c.cacheInit.Do(func() {
		c.cache, err = c.initCache()
		if err != nil {
			c.initErrors["cache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cache"]; exists {
		return nil, storedErr
	}
	return c.cache, nil
}

// AdminServer returns the loopback admin HTTP server.
func (c *Container) AdminServer(ctx context.Context) (*http.Server, error) {
	var err error
	c.adminServerInit.Do(func() {
		c.adminServer, err = c.initAdminServer(ctx)
		if err != nil {
			c.initErrors["adminServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["adminServer"]; exists {
		return nil, storedErr
	}
	return c.adminServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.adminServer != nil {
		if err := c.adminServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Wipe the master key before anything else can still reference it.
	if c.keyManager != nil {
		c.keyManager.Close()
	}

	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB opens the SQLite database.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Path:               c.config.DBPath,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		BusyTimeout:        c.config.DBBusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initCache creates the LRU cache and, with metrics enabled, exposes its size as a gauge.
func (c *Container) initCache() (cache.Cache, error) {
	lru := cache.NewLRUCache(c.config.CacheSize, c.config.CacheTTL)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for cache: %w", err)
	}
	if provider != nil {
		err := metrics.RegisterGauge(provider.MeterProvider(), c.config.MetricsNamespace,
			"cache_entries", "Number of decrypted entities held in the cache",
			func() int64 { return int64(lru.Len()) },
		)
		if err != nil {
			return nil, err
		}
	}
	return lru, nil
}

// initAdminServer creates the admin server with its router configured.
func (c *Container) initAdminServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for admin server: %w", err)
	}
	keyManager, err := c.KeyManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for admin server: %w", err)
	}
	auditLogHandler, err := c.AuditLogHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log handler for admin server: %w", err)
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for admin server: %w", err)
	}

	server := http.NewServer(db, keyManager, c.config.AdminServerHost, c.config.AdminServerPort, c.Logger())
	server.SetupRouter(http.RouterConfig{
		AuditLogHandler:         auditLogHandler,
		AuditChainStatus:        c.chainStatus,
		MetricsProvider:         provider,
		MetricsNamespace:        c.config.MetricsNamespace,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
	})
	return server, nil
}
