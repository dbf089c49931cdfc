// Package dbch wires the ClickHouse client backing the "nearyou"
// columnar store (profiles, event log, projections — C3/C4/C8/C9). It
// mirrors dbpg's init/wait/migrate shape, the teacher's only other
// storage client, since no ClickHouse client appears anywhere in the
// example corpus to imitate directly (see DESIGN.md).
package dbch

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/golang-migrate/migrate/v4"
	chmigrate "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const defaultRetries = 5

// Config addresses the ClickHouse "nearyou" database.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Open returns a *sql.DB using the ClickHouse database/sql driver, with
// the 10s send/receive timeout spec.md §5 asks for.
func Open(cfg Config) (*sql.DB, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
		ReadTimeout: 10 * time.Second,
	}
	db := clickhouse.OpenDB(opts)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// WaitFor retries pinging the database until it responds or attempts
// are exhausted.
func WaitFor(ctx context.Context, db *sql.DB, logger *slog.Logger) bool {
	for attempt := 1; attempt <= defaultRetries; attempt++ {
		if err := db.PingContext(ctx); err == nil {
			logger.InfoContext(ctx, "clickhouse connection successful")
			return true
		} else if attempt < defaultRetries {
			wait := time.Duration(attempt) * 200 * time.Millisecond
			logger.WarnContext(ctx, "clickhouse ping failed, retrying",
				slog.Int("attempt", attempt), slog.Duration("wait", wait), slog.Any("error", err))
			time.Sleep(wait)
		}
	}
	logger.ErrorContext(ctx, "clickhouse connection failed after retries")
	return false
}

// RunMigrations applies the embedded ClickHouse schema migrations.
func RunMigrations(cfg Config, logger *slog.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%s/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := chmigrate.WithInstance(db, &chmigrate.Config{
		DatabaseName:          cfg.Database,
		MigrationsTable:       "schema_migrations",
		MultiStatementEnabled: true,
	})
	if err != nil {
		return fmt.Errorf("failed to init clickhouse migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Database, driver)
	if err != nil {
		return fmt.Errorf("failed to init migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply clickhouse migrations: %w", err)
	}
	logger.Info("clickhouse migrations applied", slog.String("dsn_host", cfg.Host))
	return nil
}
