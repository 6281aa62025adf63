package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/alc6/kdb/config"
	"github.com/alc6/kdb/connection"
	"github.com/alc6/kdb/providers"
	"github.com/alc6/kdb/schema"
)

// PostgreSQLManager runs migrations against a throwaway container.
type PostgreSQLManager struct {
	image string
	db    *Database
}

func NewPostgreSQLManager(image string) DatabaseManager {
	return &PostgreSQLManager{image: image}
}

func (p *PostgreSQLManager) Setup(ctx context.Context) error {
	db, err := SetupPostgreSQL(ctx, p.image)
	if err != nil {
		return err
	}
	p.db = db
	return nil
}

func (p *PostgreSQLManager) Close(ctx context.Context) error {
	if p.db == nil {
		return nil
	}
	return p.db.Close(ctx)
}

func (p *PostgreSQLManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	if p.db == nil {
		return fmt.Errorf("database is not set up")
	}
	return p.db.RunMigrations(ctx, migrations)
}

func (p *PostgreSQLManager) RollbackMigrations(ctx context.Context, migrations []Migration) error {
	if p.db == nil {
		return fmt.Errorf("database is not set up")
	}
	return p.db.RollbackMigrations(ctx, migrations)
}

func (p *PostgreSQLManager) GetDB() *sql.DB {
	if p.db == nil {
		return nil
	}
	return p.db.DB
}

type FileSnapshotLoader struct{}

func NewFileSnapshotLoader() SnapshotLoader {
	return &FileSnapshotLoader{}
}

func (l *FileSnapshotLoader) LoadTable(path string) (*schema.Table, error) {
	return schema.LoadTable(path)
}

// ConfigConnectionOpener opens connections declared in the config file.
// A set --connection flag in Flags replaces the configured default.
type ConfigConnectionOpener struct {
	ConfigPath string
	Flags      *pflag.FlagSet
	Resolver   *connection.Resolver
}

func NewConfigConnectionOpener(configPath string, flags *pflag.FlagSet, logger *slog.Logger) ConnectionOpener {
	return &ConfigConnectionOpener{
		ConfigPath: configPath,
		Flags:      flags,
		Resolver:   newResolver(logger),
	}
}

func (o *ConfigConnectionOpener) Open(ctx context.Context, name string) (*connection.Connection, error) {
	cfg, err := config.LoadWithFlags(o.ConfigPath, o.Flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	connCfg, err := cfg.Connection(name)
	if err != nil {
		return nil, err
	}

	return o.Resolver.Connect(ctx, connCfg)
}

// NativeIntrospector reads a table through the native provider.
type NativeIntrospector struct {
	provider providers.SchemaProvider
}

func NewNativeIntrospector() TableIntrospector {
	return &NativeIntrospector{provider: providers.NewNativeProvider()}
}

func (n *NativeIntrospector) IntrospectTable(ctx context.Context, conn *connection.Connection, namespace, table string) (*schema.Table, error) {
	if namespace == "" {
		namespace = conn.Config().Schema
	}

	result, err := n.provider.ExtractTable(ctx, providers.ExtractParams{
		DB:     conn.DB(),
		Schema: namespace,
		Table:  table,
		Format: providers.FormatInfo,
	})
	if err != nil {
		return nil, err
	}
	return result.Table, nil
}

type FileMigrationReader struct{}

func NewFileMigrationReader() MigrationReader {
	return &FileMigrationReader{}
}

func (r *FileMigrationReader) DiscoverMigrations(dir string) ([]Migration, error) {
	return ParseMigrations(dir)
}

type FileMigrationWriter struct {
	Now func() time.Time
}

func NewFileMigrationWriter() MigrationWriter {
	return &FileMigrationWriter{Now: time.Now}
}

func (w *FileMigrationWriter) WriteMigration(dir, name string, up, down []string) (Migration, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	return WriteMigration(dir, name, now(), up, down)
}
