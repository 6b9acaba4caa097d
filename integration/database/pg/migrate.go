package pg

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies the SQL migrations under cfg.MigrationsPath using goose.
// goose speaks database/sql, so the pool is exposed through the pgx stdlib
// adapter for the duration of the run.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	if info, err := os.Stat(cfg.MigrationsPath); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrMigrationsDirNotFound, cfg.MigrationsPath)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	logger.InfoContext(ctx, "database migrations applied", slog.Int64("version", version))
	return nil
}
