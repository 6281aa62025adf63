package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/alc6/kdb/providers"
	"github.com/alc6/kdb/schema"
)

// StartMCPServer starts the MCP server for migration generation
func StartMCPServer() error {
	s := server.NewMCPServer(
		"kdb",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	alterTableTool := mcp.NewTool("alter_table_sql",
		mcp.WithDescription("Generate ALTER TABLE statements between two YAML table snapshots"),
		mcp.WithString("old_snapshot",
			mcp.Required(),
			mcp.Description("YAML snapshot of the table before the change"),
		),
		mcp.WithString("new_snapshot",
			mcp.Required(),
			mcp.Description("YAML snapshot of the table after the change"),
		),
		mcp.WithString("dialect",
			mcp.Description("SQL dialect (default: kingbase)"),
			mcp.Enum("kingbase", "postgres"),
		),
	)

	s.AddTool(alterTableTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAlterTable(ctx, request)
	})

	validateMigrationsTool := mcp.NewTool("validate_migrations",
		mcp.WithDescription("Validate migration files in directory without running them"),
		mcp.WithString("migration_directory",
			mcp.Required(),
			mcp.Description("Path to directory containing migration files"),
		),
	)

	s.AddTool(validateMigrationsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleValidateMigrations(ctx, request)
	})

	slog.Info("starting kdb mcp server")
	return server.ServeStdio(s)
}

// handleAlterTable processes the alter_table_sql tool request
func handleAlterTable(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldSnapshot, err := request.RequireString("old_snapshot")
	if err != nil {
		return mcp.NewToolResultError("old_snapshot parameter is required"), nil
	}
	newSnapshot, err := request.RequireString("new_snapshot")
	if err != nil {
		return mcp.NewToolResultError("new_snapshot parameter is required"), nil
	}
	dialectName := request.GetString("dialect", "kingbase")

	output, err := alterTableSQLCore(oldSnapshot, newSnapshot, dialectName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(output), nil
}

// alterTableSQLCore renders the up and down scripts for two snapshot documents
func alterTableSQLCore(oldSnapshot, newSnapshot, dialectName string) (string, error) {
	oldTable, err := schema.ParseTable([]byte(oldSnapshot))
	if err != nil {
		return "", fmt.Errorf("failed to parse old snapshot: %w", err)
	}
	newTable, err := schema.ParseTable([]byte(newSnapshot))
	if err != nil {
		return "", fmt.Errorf("failed to parse new snapshot: %w", err)
	}

	p, err := platformForDialect(dialectName, slog.Default())
	if err != nil {
		return "", err
	}

	result, err := generateAlterTable(oldTable, newTable, p)
	if errors.Is(err, ErrNoChanges) {
		return "-- no changes\n", nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("-- up\n%s-- down\n%s",
		providers.FormatStatements(result.Up),
		providers.FormatStatements(result.Down)), nil
}

// handleValidateMigrations processes the validate_migrations tool request
func handleValidateMigrations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	migrationDir, err := request.RequireString("migration_directory")
	if err != nil {
		return mcp.NewToolResultError("migration_directory parameter is required"), nil
	}

	output, err := validateMigrationsCore(migrationDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("migration validation completed:\n\n%s", output)), nil
}

type migrationInfo struct {
	Name        string `json:"name"`
	UpFile      string `json:"up_file"`
	DownFile    string `json:"down_file,omitempty"`
	HasDownFile bool   `json:"has_down_file"`
}

type validationResult struct {
	Valid          bool            `json:"valid"`
	MigrationCount int             `json:"migration_count"`
	Migrations     []migrationInfo `json:"migrations"`
}

// validateMigrationsCore lists the migration pairs of a directory as JSON
func validateMigrationsCore(migrationDir string) (string, error) {
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return "", fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	migrations, err := ParseMigrations(migrationDir)
	if err != nil {
		return "", fmt.Errorf("failed to parse migrations: %w", err)
	}

	result := validationResult{
		Valid:          true,
		MigrationCount: len(migrations),
		Migrations:     make([]migrationInfo, 0, len(migrations)),
	}
	for _, m := range migrations {
		result.Migrations = append(result.Migrations, migrationInfo{
			Name:        m.Name,
			UpFile:      m.UpFile,
			DownFile:    m.DownFile,
			HasDownFile: m.DownFile != "",
		})
	}

	jsonOutput, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	return string(jsonOutput), nil
}
