package main

import (
	"context"
	"database/sql"

	"github.com/alc6/kdb/connection"
	"github.com/alc6/kdb/schema"
)

// DatabaseManager handles the lifecycle of a scratch database
type DatabaseManager interface {
	// Setup creates and initializes the database connection
	Setup(ctx context.Context) error
	// Close cleans up database resources
	Close(ctx context.Context) error
	// RunMigrations executes the up files of the provided migrations
	RunMigrations(ctx context.Context, migrations []Migration) error
	// RollbackMigrations executes the down files in reverse order
	RollbackMigrations(ctx context.Context, migrations []Migration) error
	// GetDB returns the underlying database connection
	GetDB() *sql.DB
}

// SnapshotLoader reads table snapshots
type SnapshotLoader interface {
	LoadTable(path string) (*schema.Table, error)
}

// ConnectionOpener opens a configured connection by name
type ConnectionOpener interface {
	Open(ctx context.Context, name string) (*connection.Connection, error)
}

// TableIntrospector reads the live definition of a table
type TableIntrospector interface {
	IntrospectTable(ctx context.Context, conn *connection.Connection, namespace, table string) (*schema.Table, error)
}

// MigrationReader handles reading migration files
type MigrationReader interface {
	// DiscoverMigrations finds all migration files in the given directory
	DiscoverMigrations(dir string) ([]Migration, error)
}

// MigrationWriter writes generated statements as a migration pair
type MigrationWriter interface {
	WriteMigration(dir, name string, up, down []string) (Migration, error)
}
