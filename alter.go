package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alc6/kdb/driver"
	"github.com/alc6/kdb/platforms"
	"github.com/alc6/kdb/schema"
)

// ErrNoChanges is returned when two snapshots describe the same table.
var ErrNoChanges = errors.New("no changes between table snapshots")

// AlterResult holds the statements that move a table forward and back.
type AlterResult struct {
	// Table is the qualified name of the table before the change
	Table string
	Up    []string
	Down  []string
}

// platformForDialect maps a --dialect value to the platform of its driver.
func platformForDialect(dialect string, logger *slog.Logger) (platforms.Platform, error) {
	var d driver.Driver
	switch strings.ToLower(dialect) {
	case "", "kingbase", "kdb":
		d = driver.NewKdbDriver(logger)
	case "postgres", "postgresql", "pgsql":
		d = driver.NewPostgresDriver(platforms.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	return d.DatabasePlatformForVersion(""), nil
}

// alterStatements renders a diff. A table rename is emitted last through
// RenameTableSQL so every other statement still targets the old name.
func alterStatements(p platforms.Platform, diff *schema.TableDiff) []string {
	if diff.NewName == "" {
		return p.AlterTableSQL(diff)
	}

	newName := diff.NewName
	diff.NewName = ""
	defer func() { diff.NewName = newName }()

	return append(p.AlterTableSQL(diff), p.RenameTableSQL(diff.Name, newName)...)
}

// generateAlterTable computes the up and down statements between two snapshots.
func generateAlterTable(oldTable, newTable *schema.Table, p platforms.Platform) (*AlterResult, error) {
	up := schema.Compare(oldTable, newTable, p.CompareOptions()...)
	if up.IsEmpty() {
		return nil, ErrNoChanges
	}
	down := schema.Compare(newTable, oldTable, p.CompareOptions()...)

	return &AlterResult{
		Table: oldTable.QualifiedName(),
		Up:    alterStatements(p, up),
		Down:  alterStatements(p, down),
	}, nil
}

// alterTableCore loads two snapshot files and renders the migration for a dialect.
func alterTableCore(loader SnapshotLoader, oldPath, newPath, dialect string) (*AlterResult, error) {
	oldTable, err := loader.LoadTable(oldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load old snapshot: %w", err)
	}
	newTable, err := loader.LoadTable(newPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load new snapshot: %w", err)
	}

	p, err := platformForDialect(dialect, slog.Default())
	if err != nil {
		return nil, err
	}

	slog.Info("generating alter table", "table", oldTable.QualifiedName(), "platform", p.Name())
	return generateAlterTable(oldTable, newTable, p)
}

// diffLiveCore compares the live table behind a connection with the desired
// snapshot and returns the statements that bring the database in line. The
// statements are executed in one transaction when apply is set.
func diffLiveCore(ctx context.Context, opener ConnectionOpener, introspector TableIntrospector,
	connName string, desired *schema.Table, apply bool) ([]string, error) {
	conn, err := opener.Open(ctx, connName)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	live, err := introspector.IntrospectTable(ctx, conn, desired.Schema, desired.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect table: %w", err)
	}

	p, err := conn.Platform(ctx)
	if err != nil {
		return nil, err
	}

	diff := schema.Compare(live, desired, p.CompareOptions()...)
	if diff.IsEmpty() {
		slog.Info("table is up to date", "table", desired.QualifiedName())
		return nil, nil
	}

	statements, err := conn.AlterTableSQL(ctx, diff)
	if err != nil {
		return nil, err
	}

	if apply {
		if err := conn.ExecTx(ctx, statements); err != nil {
			return nil, fmt.Errorf("failed to apply changes: %w", err)
		}
		slog.Info("applied changes", "table", desired.QualifiedName(), "statements", len(statements))
	}

	return statements, nil
}
