package app

import (
	"context"
	"fmt"

	auditHTTP "github.com/allisson/casevault/internal/audit/http"
	auditRepository "github.com/allisson/casevault/internal/audit/repository"
	auditService "github.com/allisson/casevault/internal/audit/service"
	auditUsecase "github.com/allisson/casevault/internal/audit/usecase"
)

// AuditLogger returns the audit logger. With sealing enabled it needs the master key, so
// the key is loaded first.
func (c *Container) AuditLogger(ctx context.Context) (auditUsecase.AuditLogger, error) {
	var err error
	c.auditLoggerInit.Do(func() {
		c.auditLogger, err = c.initAuditLogger(ctx)
		if err != nil {
			c.initErrors["auditLogger"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogger"]; exists {
		return nil, storedErr
	}
	return c.auditLogger, nil
}

// AuditChainStatus returns the outcome of the latest chain verification run through the
// container's audit logger.
func (c *Container) AuditChainStatus() *auditUsecase.ChainStatus {
	return c.chainStatus
}

// AuditLogHandler returns the admin endpoints over the audit log.
func (c *Container) AuditLogHandler(ctx context.Context) (*auditHTTP.AuditLogHandler, error) {
	auditLogger, err := c.AuditLogger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for audit log handler: %w", err)
	}
	return auditHTTP.NewAuditLogHandler(auditLogger, c.Logger()), nil
}

func (c *Container) initAuditLogger(ctx context.Context) (auditUsecase.AuditLogger, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit logger: %w", err)
	}
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit logger: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for audit logger: %w", err)
	}

	cfg := auditUsecase.Config{WriteTimeout: c.config.AuditWriteTimeout}
	if c.config.AuditSealEnabled {
		keyManager, err := c.KeyManager(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get key manager for audit sealer: %w", err)
		}
		cfg.Sealer = auditService.NewSealer(keyManager)
	}

	auditLogger := auditUsecase.NewAuditLogger(
		txManager,
		auditRepository.NewSQLiteAuditLogRepository(db),
		auditService.NewHasher(),
		c.Logger(),
		cfg,
	)

	if c.config.MetricsEnabled {
		auditLogger = auditUsecase.NewAuditLoggerWithMetrics(auditLogger, businessMetrics)
	}
	return auditUsecase.NewAuditLoggerWithChainStatus(auditLogger, c.chainStatus), nil
}
