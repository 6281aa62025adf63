// Package driver maps a database engine to the SQL platform that generates its DDL.
package driver

import (
	"log/slog"

	"github.com/alc6/kdb/platforms"
)

// Driver is the low-level driver of a connection
type Driver interface {
	Name() string
	// DatabasePlatformForVersion returns the platform for the given server version string
	DatabasePlatformForVersion(version string) platforms.Platform
}

// PostgresDriver is the generic PostgreSQL driver.
type PostgresDriver struct {
	opts []platforms.Option
}

func NewPostgresDriver(opts ...platforms.Option) *PostgresDriver {
	return &PostgresDriver{opts: opts}
}

func (d *PostgresDriver) Name() string {
	return "postgres"
}

// DatabasePlatformForVersion returns the generic PostgreSQL platform. Every
// supported server version shares the same DDL.
func (d *PostgresDriver) DatabasePlatformForVersion(version string) platforms.Platform {
	return platforms.NewPostgresPlatform(d.opts...)
}

// KdbDriver is the Kingbase driver. Kingbase speaks the PostgreSQL wire
// protocol, so only the platform differs.
type KdbDriver struct {
	PostgresDriver
	logger *slog.Logger
}

func NewKdbDriver(logger *slog.Logger, opts ...platforms.Option) *KdbDriver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KdbDriver{
		PostgresDriver: PostgresDriver{opts: append([]platforms.Option{platforms.WithLogger(logger)}, opts...)},
		logger:         logger,
	}
}

func (d *KdbDriver) Name() string {
	return "kdb"
}

// DatabasePlatformForVersion always returns the Kingbase platform.
func (d *KdbDriver) DatabasePlatformForVersion(version string) platforms.Platform {
	d.logger.Debug("selecting platform", "driver", d.Name(), "server_version", version)
	return platforms.NewKdbPlatform(d.opts...)
}
