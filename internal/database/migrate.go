package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/models"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table and index the application uses.
func RunMigrations(db *gorm.DB) error {
	logging.Info().Str("driver", db.Dialector.Name()).Msg("running auto-migration")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CheckPostgres opens a plain database/sql connection through lib/pq and pings
// it, so connectivity problems surface before gorm is involved.
func CheckPostgres(ctx context.Context, dsn string) error {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}
	var version string
	if err := conn.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("error querying server version: %w", err)
	}
	logging.Info().Str("version", version).Msg("database reachable")
	return nil
}
