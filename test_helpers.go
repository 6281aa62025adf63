package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alc6/kdb/connection"
	"github.com/alc6/kdb/schema"
)

// MockDatabaseManager is a mock implementation of DatabaseManager for testing
type MockDatabaseManager struct {
	SetupFunc              func(ctx context.Context) error
	CloseFunc              func(ctx context.Context) error
	RunMigrationsFunc      func(ctx context.Context, migrations []Migration) error
	RollbackMigrationsFunc func(ctx context.Context, migrations []Migration) error
	GetDBFunc              func() *sql.DB

	// Track calls for verification
	SetupCalled              bool
	CloseCalled              bool
	RunMigrationsCalled      bool
	RollbackMigrationsCalled bool
	GetDBCalled              bool
}

func (m *MockDatabaseManager) Setup(ctx context.Context) error {
	m.SetupCalled = true
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseManager) Close(ctx context.Context) error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseManager) RunMigrations(ctx context.Context, migrations []Migration) error {
	m.RunMigrationsCalled = true
	if m.RunMigrationsFunc != nil {
		return m.RunMigrationsFunc(ctx, migrations)
	}
	return nil
}

func (m *MockDatabaseManager) RollbackMigrations(ctx context.Context, migrations []Migration) error {
	m.RollbackMigrationsCalled = true
	if m.RollbackMigrationsFunc != nil {
		return m.RollbackMigrationsFunc(ctx, migrations)
	}
	return nil
}

func (m *MockDatabaseManager) GetDB() *sql.DB {
	m.GetDBCalled = true
	if m.GetDBFunc != nil {
		return m.GetDBFunc()
	}
	return nil
}

// MockMigrationReader is a mock implementation of MigrationReader for testing
type MockMigrationReader struct {
	DiscoverMigrationsFunc func(dir string) ([]Migration, error)
}

func (m *MockMigrationReader) DiscoverMigrations(dir string) ([]Migration, error) {
	if m.DiscoverMigrationsFunc != nil {
		return m.DiscoverMigrationsFunc(dir)
	}
	return []Migration{}, nil
}

// MockSnapshotLoader serves tables from memory, keyed by path
type MockSnapshotLoader struct {
	Tables map[string]*schema.Table
}

func (m *MockSnapshotLoader) LoadTable(path string) (*schema.Table, error) {
	t, ok := m.Tables[path]
	if !ok {
		return nil, fmt.Errorf("snapshot not found: %s", path)
	}
	return t, nil
}

// MockConnectionOpener is a mock implementation of ConnectionOpener for testing
type MockConnectionOpener struct {
	OpenFunc func(ctx context.Context, name string) (*connection.Connection, error)

	OpenedName string
}

func (m *MockConnectionOpener) Open(ctx context.Context, name string) (*connection.Connection, error) {
	m.OpenedName = name
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, name)
	}
	return nil, fmt.Errorf("no connection")
}

// MockTableIntrospector is a mock implementation of TableIntrospector for testing
type MockTableIntrospector struct {
	IntrospectTableFunc func(ctx context.Context, conn *connection.Connection, namespace, table string) (*schema.Table, error)
}

func (m *MockTableIntrospector) IntrospectTable(ctx context.Context, conn *connection.Connection, namespace, table string) (*schema.Table, error) {
	if m.IntrospectTableFunc != nil {
		return m.IntrospectTableFunc(ctx, conn, namespace, table)
	}
	return nil, fmt.Errorf("table not found")
}

// SimulateError simulates various database errors for testing
func SimulateError(errType string) error {
	switch errType {
	case "connection":
		return fmt.Errorf("connection refused")
	case "syntax":
		return fmt.Errorf("syntax error at or near 'INVALID'")
	case "permission":
		return fmt.Errorf("permission denied")
	default:
		return fmt.Errorf("simulated error: %s", errType)
	}
}
