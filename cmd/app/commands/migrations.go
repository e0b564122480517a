package commands

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/allisson/casevault/internal/database"
)

// RunMigrations applies or reverts the embedded SQLite migrations and reports the resulting
// schema version.
func RunMigrations(logger *slog.Logger, db *sql.DB, direction string) error {
	logger.Info("running database migrations", slog.String("direction", direction))

	if err := database.RunMigrations(db, direction); err != nil {
		return err
	}

	version, dirty, err := database.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}
