package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshots(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.yaml")
	newPath := filepath.Join(dir, "new.yaml")
	require.NoError(t, os.WriteFile(oldPath, []byte(oldUsersSnapshot), 0644))
	require.NoError(t, os.WriteFile(newPath, []byte(newUsersSnapshot), 0644))
	return oldPath, newPath
}

func TestCLIAlter(t *testing.T) {
	oldPath, newPath := writeSnapshots(t)

	t.Run("prints_up_and_down", func(t *testing.T) {
		out := executeCommand(t, "alter", oldPath, newPath)

		assert.Contains(t, out, "-- up\n")
		assert.Contains(t, out, `ALTER TABLE "users" ADD "age" INTEGER DEFAULT NULL;`)
		assert.Contains(t, out, `COMMENT ON COLUMN "users"."age" IS 'user age';`)
		assert.Contains(t, out, "-- down\n")
		assert.Contains(t, out, `ALTER TABLE "users" DROP "age";`)
	})

	t.Run("postgres_dialect", func(t *testing.T) {
		out := executeCommand(t, "alter", oldPath, newPath, "--dialect", "postgres")
		assert.Contains(t, out, "ALTER TABLE users ADD age INTEGER DEFAULT NULL;")
	})

	t.Run("no_changes", func(t *testing.T) {
		out := executeCommand(t, "alter", oldPath, oldPath)
		assert.Contains(t, out, "-- no changes")
	})

	t.Run("writes_migration_pair", func(t *testing.T) {
		outDir := t.TempDir()
		out := executeCommand(t, "alter", oldPath, newPath, "--out", outDir, "--name", "Add user age")

		migrations, err := ParseMigrations(outDir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Regexp(t, `^\d{14}_add_user_age$`, migrations[0].Name)
		assert.Contains(t, out, migrations[0].UpFile)

		up, err := os.ReadFile(migrations[0].UpFile)
		require.NoError(t, err)
		assert.Equal(t, "ALTER TABLE \"users\" ADD \"age\" INTEGER DEFAULT NULL;\nCOMMENT ON COLUMN \"users\".\"age\" IS 'user age';\n", string(up))

		down, err := os.ReadFile(migrations[0].DownFile)
		require.NoError(t, err)
		assert.Equal(t, "ALTER TABLE \"users\" DROP \"age\";\n", string(down))
	})

	t.Run("default_migration_name", func(t *testing.T) {
		outDir := t.TempDir()
		executeCommand(t, "alter", oldPath, newPath, "-o", outDir)

		migrations, err := ParseMigrations(outDir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.Regexp(t, `_alter_users$`, migrations[0].Name)
	})

	t.Run("missing_snapshot", func(t *testing.T) {
		_, err := executeCommandErr(t, "alter", oldPath, filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load new snapshot")
	})

	t.Run("wrong_arg_count", func(t *testing.T) {
		_, err := executeCommandErr(t, "alter", oldPath)
		assert.Error(t, err)
	})

	t.Run("unsupported_dialect", func(t *testing.T) {
		_, err := executeCommandErr(t, "alter", oldPath, newPath, "--dialect", "mysql")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported dialect")
	})
}

func TestCLIDrivers(t *testing.T) {
	out := executeCommand(t, "drivers")

	assert.Contains(t, out, "=== DRIVERS ===")
	for _, name := range []string{"kdb", "kingbase", "pgsql", "postgres"} {
		assert.Contains(t, out, "  "+name+"\n")
	}
}

func TestCLIConnectionErrors(t *testing.T) {
	_, newPath := writeSnapshots(t)
	missingConfig := filepath.Join(t.TempDir(), "kdb.yaml")

	t.Run("diff_without_config", func(t *testing.T) {
		_, err := executeCommandErr(t, "diff", newPath, "--config", missingConfig)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})

	t.Run("diff_unknown_connection", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "kdb.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("connections:\n  main:\n    driver: kdb\n"), 0644))

		_, err := executeCommandErr(t, "diff", newPath, "--config", cfgPath, "--connection", "other")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `connection "other" not found`)
	})

	t.Run("show_unknown_provider", func(t *testing.T) {
		_, err := executeCommandErr(t, "show", "users", "--provider", "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider: nope")
	})

	t.Run("verify_missing_directory", func(t *testing.T) {
		_, err := executeCommandErr(t, "verify", "/non/existent/path")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migration directory does not exist")
	})
}
