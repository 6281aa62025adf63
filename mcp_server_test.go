package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAlterTableSQLCore(t *testing.T) {
	t.Run("kingbase", func(t *testing.T) {
		out, err := alterTableSQLCore(oldUsersSnapshot, newUsersSnapshot, "kingbase")
		require.NoError(t, err)
		assert.Equal(t, "-- up\n"+
			"ALTER TABLE \"users\" ADD \"age\" INTEGER DEFAULT NULL;\n"+
			"COMMENT ON COLUMN \"users\".\"age\" IS 'user age';\n"+
			"-- down\n"+
			"ALTER TABLE \"users\" DROP \"age\";\n", out)
	})

	t.Run("postgres", func(t *testing.T) {
		out, err := alterTableSQLCore(oldUsersSnapshot, newUsersSnapshot, "postgres")
		require.NoError(t, err)
		assert.Contains(t, out, "ALTER TABLE users DROP age;")
	})

	t.Run("no_changes", func(t *testing.T) {
		out, err := alterTableSQLCore(oldUsersSnapshot, oldUsersSnapshot, "kingbase")
		require.NoError(t, err)
		assert.Equal(t, "-- no changes\n", out)
	})

	t.Run("invalid_old_snapshot", func(t *testing.T) {
		_, err := alterTableSQLCore("columns: []", newUsersSnapshot, "kingbase")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse old snapshot")
	})

	t.Run("invalid_new_snapshot", func(t *testing.T) {
		_, err := alterTableSQLCore(oldUsersSnapshot, "name: [", "kingbase")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse new snapshot")
	})
}

func TestHandleAlterTable(t *testing.T) {
	ctx := context.Background()

	t.Run("missing_old_snapshot", func(t *testing.T) {
		result, err := handleAlterTable(ctx, toolRequest(map[string]any{"new_snapshot": newUsersSnapshot}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "old_snapshot parameter is required", resultText(t, result))
	})

	t.Run("missing_new_snapshot", func(t *testing.T) {
		result, err := handleAlterTable(ctx, toolRequest(map[string]any{"old_snapshot": oldUsersSnapshot}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("default_dialect", func(t *testing.T) {
		result, err := handleAlterTable(ctx, toolRequest(map[string]any{
			"old_snapshot": oldUsersSnapshot,
			"new_snapshot": newUsersSnapshot,
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), `ALTER TABLE "users" ADD "age"`)
	})

	t.Run("bad_dialect", func(t *testing.T) {
		result, err := handleAlterTable(ctx, toolRequest(map[string]any{
			"old_snapshot": oldUsersSnapshot,
			"new_snapshot": newUsersSnapshot,
			"dialect":      "sqlite",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestValidateMigrationsCore(t *testing.T) {
	t.Run("valid_migrations", func(t *testing.T) {
		tempDir := t.TempDir()
		files := map[string]string{
			"001_users.up.sql":   "create table users (id int);",
			"001_users.down.sql": "drop table users;",
			"002_posts.up.sql":   "create table posts (id int);",
		}
		for filename, content := range files {
			err := os.WriteFile(filepath.Join(tempDir, filename), []byte(content), 0644)
			require.NoError(t, err)
		}

		result, err := validateMigrationsCore(tempDir)
		require.NoError(t, err)
		assert.Contains(t, result, `"migration_count": 2`)

		var decoded validationResult
		require.NoError(t, json.Unmarshal([]byte(result), &decoded))
		require.Len(t, decoded.Migrations, 2)
		assert.True(t, decoded.Migrations[0].HasDownFile)
		assert.False(t, decoded.Migrations[1].HasDownFile)
		assert.Empty(t, decoded.Migrations[1].DownFile)
	})

	t.Run("empty_directory", func(t *testing.T) {
		result, err := validateMigrationsCore(t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, result, `"migration_count": 0`)
		assert.Contains(t, result, `"migrations": []`)
	})

	t.Run("nonexistent_directory", func(t *testing.T) {
		_, err := validateMigrationsCore("/path/that/does/not/exist")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migration directory does not exist")
	})
}

func TestHandleValidateMigrations(t *testing.T) {
	t.Run("missing_directory_param", func(t *testing.T) {
		result, err := handleValidateMigrations(context.Background(), toolRequest(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("success", func(t *testing.T) {
		result, err := handleValidateMigrations(context.Background(), toolRequest(map[string]any{
			"migration_directory": t.TempDir(),
		}))
		require.NoError(t, err)
		assert.Contains(t, resultText(t, result), "migration validation completed")
	})
}
