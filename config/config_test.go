package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
default: main
connections:
  main:
    driver: kdb
    host: kb.internal
    database: app
    username: system
    password: secret
  reporting:
    driver: postgres
    client: pgx
    port: 6432
    database: reports
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Default)
	assert.Equal(t, []string{"main", "reporting"}, cfg.Names())

	t.Run("default_connection", func(t *testing.T) {
		conn, err := cfg.Connection("")
		require.NoError(t, err)

		assert.Equal(t, "main", conn.Name)
		assert.Equal(t, "kdb", conn.Driver)
		assert.Equal(t, "pq", conn.Client)
		assert.Equal(t, "kb.internal", conn.Host)
		assert.Equal(t, DefaultKingbasePort, conn.Port)
		assert.Equal(t, "disable", conn.SSLMode)
		assert.Equal(t, "public", conn.Schema)
		assert.Equal(t, "system", conn.Username)
	})

	t.Run("named_connection", func(t *testing.T) {
		conn, err := cfg.Connection("reporting")
		require.NoError(t, err)

		assert.Equal(t, "postgres", conn.Driver)
		assert.Equal(t, "pgx", conn.Client)
		assert.Equal(t, 6432, conn.Port)
		assert.Equal(t, "localhost", conn.Host)
	})

	t.Run("unknown_connection", func(t *testing.T) {
		_, err := cfg.Connection("missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "main, reporting")
	})
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KDB_CONNECTIONS__MAIN__HOST", "override.internal")
	t.Setenv("KDB_CONNECTIONS__MAIN__PORT", "54322")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	conn, err := cfg.Connection("main")
	require.NoError(t, err)
	assert.Equal(t, "override.internal", conn.Host)
	assert.Equal(t, 54322, conn.Port)
	assert.Equal(t, "app", conn.Database)
}

func TestLoadWithFlags(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		fs.String(ConnectionFlag, "", "")
		fs.Bool("verbose", false, "")
		return fs
	}

	t.Run("set_flag_overrides_default", func(t *testing.T) {
		fs := newFlags()
		require.NoError(t, fs.Parse([]string{"--connection", "reporting", "--verbose"}))

		cfg, err := LoadWithFlags(writeConfig(t, sampleConfig), fs)
		require.NoError(t, err)
		assert.Equal(t, "reporting", cfg.Default)

		conn, err := cfg.Connection("")
		require.NoError(t, err)
		assert.Equal(t, "reporting", conn.Name)
	})

	t.Run("unset_flag_keeps_file_default", func(t *testing.T) {
		cfg, err := LoadWithFlags(writeConfig(t, sampleConfig), newFlags())
		require.NoError(t, err)
		assert.Equal(t, "main", cfg.Default)
	})
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConnectionInference(t *testing.T) {
	t.Run("single_connection_without_default", func(t *testing.T) {
		cfg := &Config{Connections: map[string]Connection{"only": {Driver: "postgres"}}}

		conn, err := cfg.Connection("")
		require.NoError(t, err)
		assert.Equal(t, "only", conn.Name)
		assert.Equal(t, DefaultPostgresPort, conn.Port)
	})

	t.Run("ambiguous_without_default", func(t *testing.T) {
		cfg := &Config{Connections: map[string]Connection{"a": {}, "b": {}}}

		_, err := cfg.Connection("")
		assert.ErrorIs(t, err, ErrNoConnection)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := (&Config{}).Connection("")
		assert.ErrorIs(t, err, ErrNoConnection)
	})
}

func TestApplyDefaults(t *testing.T) {
	conn := Connection{}
	conn.ApplyDefaults()

	assert.Equal(t, "kdb", conn.Driver)
	assert.True(t, conn.IsKingbase())
	assert.Equal(t, DefaultKingbasePort, conn.Port)

	pg := Connection{Driver: "pgsql", SSLMode: "require"}
	pg.ApplyDefaults()
	assert.False(t, pg.IsKingbase())
	assert.Equal(t, DefaultPostgresPort, pg.Port)
	assert.Equal(t, "require", pg.SSLMode)
}
