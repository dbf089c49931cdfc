// Package dbpg wires the Postgres/PostGIS connection pool backing the
// spatial POI index (C2), following the teacher's app/db/db.go pattern:
// ping-retry wait, embedded-migration runner, pooled client.
package dbpg

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const defaultRetries = 5

// Open creates and returns a pgxpool.Pool sized 2-10 connections per
// spec.md §5, with a 10s default statement/command timeout enforced by
// callers via context.
func Open(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed parsing postgres config: %w", err)
	}
	cfg.MinConns = 2
	cfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed creating postgres pool: %w", err)
	}
	return pool, nil
}

// WaitFor retries pinging the pool until it responds or attempts are
// exhausted.
func WaitFor(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) bool {
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		if err := pool.Ping(ctx); err == nil {
			logger.InfoContext(ctx, "postgres connection successful")
			return true
		} else if attempt < defaultRetries {
			wait := time.Duration(attempt) * 200 * time.Millisecond
			logger.WarnContext(ctx, "postgres ping failed, retrying",
				slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
			time.Sleep(wait)
		}
	}
	logger.ErrorContext(ctx, "postgres connection failed after retries")
	return false
}

// RunMigrations applies the embedded PostGIS schema migrations.
func RunMigrations(connString string, logger *slog.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, connString)
	if err != nil {
		return fmt.Errorf("failed to init migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply postgres migrations: %w", err)
	}
	logger.Info("postgres migrations applied")
	return nil
}
