package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// KeyChecker loads the master key and re-checks it.
type KeyChecker interface {
	GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error)
	Ready(ctx context.Context) error
}

// RunKeyHealth runs the startup key sequence (which migrates a legacy key when one is
// found) followed by the readiness self-test, and reports the outcome.
func RunKeyHealth(
	ctx context.Context,
	checker KeyChecker,
	logger *slog.Logger,
	writer io.Writer,
	keyName string,
	format string,
) error {
	logger.Info("checking encryption key health", slog.String("key_name", keyName))

	checkErr := func() error {
		if _, err := checker.GetOrCreateKey(ctx); err != nil {
			return err
		}
		return checker.Ready(ctx)
	}()

	if format == "json" {
		result := map[string]any{
			"key_name": keyName,
			"healthy":  checkErr == nil,
		}
		if checkErr != nil {
			result["error"] = checkErr.Error()
		}
		if err := writeJSON(writer, result); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Encryption key: %s\n", keyName)
		if checkErr != nil {
			_, _ = fmt.Fprintf(writer, "Status: UNHEALTHY (%v)\n", checkErr)
		} else {
			_, _ = fmt.Fprintf(writer, "Status: HEALTHY\n")
		}
	}

	if checkErr != nil {
		return fmt.Errorf("encryption key health check failed: %w", checkErr)
	}
	return nil
}
