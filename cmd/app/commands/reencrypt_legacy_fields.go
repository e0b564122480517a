package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// LegacyReencryptor rewrites fields still stored in the legacy format under the current
// envelope.
type LegacyReencryptor interface {
	ReencryptLegacy(ctx context.Context) (int, error)
}

// NamedReencryptor pairs a repository with the entity type it stores.
type NamedReencryptor struct {
	EntityType  string
	Reencryptor LegacyReencryptor
}

// RunReencryptLegacyFields runs the one-time pass that rewrites legacy-format sensitive
// fields. Each entity type runs in its own transaction; the pass stops at the first failure.
//
// Requirements: Database must be migrated and the master key must load.
func RunReencryptLegacyFields(
	ctx context.Context,
	reencryptors []NamedReencryptor,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	counts := make(map[string]int, len(reencryptors))
	total := 0

	for _, r := range reencryptors {
		logger.Info("re-encrypting legacy fields", slog.String("entity_type", r.EntityType))

		n, err := r.Reencryptor.ReencryptLegacy(ctx)
		if err != nil {
			return fmt.Errorf("failed to re-encrypt %s rows: %w", r.EntityType, err)
		}
		counts[r.EntityType] = n
		total += n

		logger.Info("legacy fields re-encrypted",
			slog.String("entity_type", r.EntityType),
			slog.Int("rows", n),
		)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"rows":  counts,
			"total": total,
		})
	}

	for _, r := range reencryptors {
		_, _ = fmt.Fprintf(writer, "%-12s %d row(s) re-encrypted\n", r.EntityType, counts[r.EntityType])
	}
	_, _ = fmt.Fprintf(writer, "Total: %d\n", total)
	return nil
}
