package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultImage is the scratch database image used by verify.
const DefaultImage = "postgres:16-alpine"

type Database struct {
	Container testcontainers.Container
	DB        *sql.DB
	ConnStr   string
}

// SetupPostgreSQL starts a throwaway PostgreSQL container. Kingbase accepts
// the same DDL, so it stands in for a Kingbase server.
func SetupPostgreSQL(ctx context.Context, image string) (*Database, error) {
	if image == "" {
		image = DefaultImage
	}

	slog.Debug("starting postgresql container", "image", image)
	container, err := postgres.Run(ctx,
		image,
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("postgresql container ready", "image", image)
	return &Database{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

func (d *Database) Close(ctx context.Context) error {
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Container != nil {
		return d.Container.Terminate(ctx)
	}
	return nil
}

func (d *Database) RunMigrations(ctx context.Context, migrations []Migration) error {
	for _, migration := range migrations {
		if err := d.execFile(ctx, migration.Name, migration.UpFile); err != nil {
			return err
		}
	}

	slog.Info("all migrations completed successfully", "count", len(migrations))
	return nil
}

// RollbackMigrations runs down files from the last migration to the first.
// Migrations without a down file are skipped.
func (d *Database) RollbackMigrations(ctx context.Context, migrations []Migration) error {
	count := 0
	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.DownFile == "" {
			slog.Warn("migration has no down file", "name", migration.Name)
			continue
		}
		if err := d.execFile(ctx, migration.Name, migration.DownFile); err != nil {
			return err
		}
		count++
	}

	slog.Info("all rollbacks completed successfully", "count", count)
	return nil
}

func (d *Database) execFile(ctx context.Context, name, path string) error {
	slog.Debug("running migration", "name", name, "file", path)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", path, err)
	}

	if _, err := d.DB.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}

	slog.Debug("migration completed successfully", "name", name)
	return nil
}
