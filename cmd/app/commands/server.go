package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/casevault/internal/app"
	auditDomain "github.com/allisson/casevault/internal/audit/domain"
	auditUsecase "github.com/allisson/casevault/internal/audit/usecase"
	"github.com/allisson/casevault/internal/config"
)

// shutdownTimeout bounds the graceful stop of the admin server.
const shutdownTimeout = 10 * time.Second

// RunServer loads the master key, optionally verifies the audit chain, and serves the
// loopback admin surface. Blocks until receiving SIGINT/SIGTERM or encountering a fatal
// error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting casevault", slog.String("version", version))

	defer closeContainer(container, logger)

	// The key sequence runs first; any failure here is terminal.
	if _, err := container.KeyManager(ctx); err != nil {
		return fmt.Errorf("failed to load encryption key: %w", err)
	}

	if cfg.AuditVerifyOnStartup {
		auditLogger, err := container.AuditLogger(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize audit logger: %w", err)
		}
		if err := verifyAuditChainOnStartup(ctx, auditLogger, logger); err != nil {
			return err
		}
	}

	server, err := container.AdminServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize admin server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("admin server shutdown: %w", err)
		}
	case err := <-serverErr:
		logger.Error("server error, initiating shutdown", slog.Any("error", err))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if shutErr := server.Shutdown(shutdownCtx); shutErr != nil {
			return errors.Join(err, fmt.Errorf("admin server shutdown: %w", shutErr))
		}
		return err
	}

	return nil
}

// verifyAuditChainOnStartup walks the whole chain once. A broken chain is logged and left on
// /ready for operators; only a failure to read the chain stops the server.
func verifyAuditChainOnStartup(
	ctx context.Context,
	auditLogger auditUsecase.AuditLogger,
	logger *slog.Logger,
) error {
	result, err := auditLogger.VerifyChain(ctx, auditDomain.VerifyOptions{})
	if err != nil && !errors.Is(err, auditDomain.ErrAuditChainIntegrity) {
		return fmt.Errorf("audit chain verification failed: %w", err)
	}
	if result == nil {
		result = &auditDomain.VerifyResult{}
	}
	if err != nil {
		logger.Error("audit chain is broken, serving anyway",
			slog.String("broken_at_id", result.BrokenAtID),
			slog.String("reason", result.Reason),
			slog.Int64("entries_checked", result.EntriesChecked),
		)
		return nil
	}

	logger.Info("audit chain verified", slog.Int64("entries_checked", result.EntriesChecked))
	return nil
}
