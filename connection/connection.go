// Package connection wraps a database handle with the driver and platform
// used to generate DDL for it.
package connection

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-version"

	"github.com/alc6/kdb/config"
	"github.com/alc6/kdb/driver"
	"github.com/alc6/kdb/platforms"
	"github.com/alc6/kdb/schema"
)

// Connection is an open database with its low-level driver
type Connection struct {
	name   string
	config config.Connection
	db     *sql.DB
	driver driver.Driver
	logger *slog.Logger

	mu       sync.Mutex
	platform platforms.Platform
}

// Factory builds a Connection around an opened database handle.
type Factory func(db *sql.DB, cfg config.Connection, logger *slog.Logger) *Connection

func newConnection(db *sql.DB, cfg config.Connection, logger *slog.Logger, d driver.Driver) *Connection {
	return &Connection{
		name:   cfg.Name,
		config: cfg,
		db:     db,
		driver: d,
		logger: logger,
	}
}

// NewPostgresConnection creates a connection that uses the generic PostgreSQL driver.
func NewPostgresConnection(db *sql.DB, cfg config.Connection, logger *slog.Logger) *Connection {
	return PostgresConnectionFactory()(db, cfg, logger)
}

// NewKdbConnection creates a connection whose driver is the Kingbase driver.
// Everything else behaves like a PostgreSQL connection.
func NewKdbConnection(db *sql.DB, cfg config.Connection, logger *slog.Logger) *Connection {
	return KdbConnectionFactory()(db, cfg, logger)
}

// PostgresConnectionFactory returns a Factory for generic PostgreSQL
// connections whose platform is built with opts, such as platforms.WithHooks.
func PostgresConnectionFactory(opts ...platforms.Option) Factory {
	return func(db *sql.DB, cfg config.Connection, logger *slog.Logger) *Connection {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		platformOpts := append([]platforms.Option{platforms.WithLogger(logger)}, opts...)
		return newConnection(db, cfg, logger, driver.NewPostgresDriver(platformOpts...))
	}
}

// KdbConnectionFactory returns a Factory for Kingbase connections whose
// platform is built with opts.
func KdbConnectionFactory(opts ...platforms.Option) Factory {
	return func(db *sql.DB, cfg config.Connection, logger *slog.Logger) *Connection {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		return newConnection(db, cfg, logger, driver.NewKdbDriver(logger, opts...))
	}
}

func (c *Connection) Name() string {
	return c.name
}

func (c *Connection) Config() config.Connection {
	return c.config
}

func (c *Connection) DB() *sql.DB {
	return c.db
}

// Driver returns the low-level driver of the connection.
func (c *Connection) Driver() driver.Driver {
	return c.driver
}

// ServerVersion returns the raw server_version setting.
func (c *Connection) ServerVersion(ctx context.Context) (string, error) {
	var raw string
	if err := c.db.QueryRowContext(ctx, "SHOW server_version").Scan(&raw); err != nil {
		return "", fmt.Errorf("failed to read server version: %w", err)
	}

	if v, err := version.NewVersion(raw); err == nil {
		c.logger.Debug("server version", "connection", c.name, "version", v.String(), "major", v.Segments()[0])
	} else {
		c.logger.Debug("server version is not semver", "connection", c.name, "version", raw)
	}

	return raw, nil
}

// Platform returns the SQL platform matching the server. The result is cached.
func (c *Connection) Platform(ctx context.Context) (platforms.Platform, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.platform != nil {
		return c.platform, nil
	}

	v, err := c.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}

	c.platform = c.driver.DatabasePlatformForVersion(v)
	return c.platform, nil
}

// AlterTableSQL returns the statements that apply diff on this connection.
func (c *Connection) AlterTableSQL(ctx context.Context, diff *schema.TableDiff) ([]string, error) {
	p, err := c.Platform(ctx)
	if err != nil {
		return nil, err
	}
	return p.AlterTableSQL(diff), nil
}

// AlterTable applies diff in a single transaction. Nothing is committed when
// a statement fails.
func (c *Connection) AlterTable(ctx context.Context, diff *schema.TableDiff) error {
	statements, err := c.AlterTableSQL(ctx, diff)
	if err != nil {
		return err
	}
	return c.ExecTx(ctx, statements)
}

// ExecTx runs statements in order inside one transaction.
func (c *Connection) ExecTx(ctx context.Context, statements []string) error {
	if len(statements) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, stmt := range statements {
		c.logger.Debug("executing statement", "connection", c.name, "index", i, "sql", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				c.logger.Error("rollback failed", "connection", c.name, "error", rbErr)
			}
			return fmt.Errorf("failed to execute statement %d (%s): %w", i+1, stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	c.logger.Info("statements applied", "connection", c.name, "count", len(statements))
	return nil
}

func (c *Connection) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
