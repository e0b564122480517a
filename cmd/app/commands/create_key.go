package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// KeyProvisioner generates and stores a new master key.
type KeyProvisioner interface {
	ProvisionKey(ctx context.Context) (string, error)
}

// RunCreateKey provisions the master key in secure storage. It refuses to replace an
// existing key. The base64 form is printed once so the operator can escrow it offline.
//
// Requirements: the configured secure storage must be reachable.
func RunCreateKey(
	ctx context.Context,
	provisioner KeyProvisioner,
	logger *slog.Logger,
	writer io.Writer,
	keyName string,
	format string,
) error {
	logger.Info("provisioning encryption key", slog.String("key_name", keyName))

	encoded, err := provisioner.ProvisionKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to provision encryption key: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"key_name": keyName,
			"key":      encoded,
		})
	}

	_, _ = fmt.Fprintf(writer, "Encryption key %q stored in secure storage.\n\n", keyName)
	_, _ = fmt.Fprintf(writer, "Escrow copy (shown once, store it offline):\n%s\n", encoded)
	return nil
}
