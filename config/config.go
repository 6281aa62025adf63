// Package config loads named database connections from kdb.yaml, .env and
// KDB_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConnectionFlag is the command line flag that overrides the default connection.
const ConnectionFlag = "connection"

// FileName is the config file looked up in the working directory.
const FileName = "kdb.yaml"

// FileNameAlt is the alternate name of the config file.
const FileNameAlt = "kdb.yml"

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore: KDB_CONNECTIONS__MAIN__HOST.
const EnvPrefix = "KDB_"

const (
	DefaultKingbasePort = 54321
	DefaultPostgresPort = 5432
)

// ErrNoConnection is returned when no connection name is given and none can be inferred.
var ErrNoConnection = errors.New("no connection configured")

// Config is the top level configuration
type Config struct {
	Default     string                `koanf:"default"`
	Connections map[string]Connection `koanf:"connections"`
}

// Connection describes one database connection
type Connection struct {
	// Name is the key of the connection in the connections map
	Name string `koanf:"-"`

	Driver   string `koanf:"driver"` // kdb, kingbase, postgres, pgsql
	Client   string `koanf:"client"` // pq or pgx
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Schema   string `koanf:"schema"`
	SSLMode  string `koanf:"sslmode"`
}

// ApplyDefaults fills in unset connection fields.
func (c *Connection) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = "kdb"
	}
	if c.Client == "" {
		c.Client = "pq"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = DefaultPostgresPort
		if c.IsKingbase() {
			c.Port = DefaultKingbasePort
		}
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Schema == "" {
		c.Schema = "public"
	}
}

// IsKingbase reports whether the connection targets a Kingbase server.
func (c *Connection) IsKingbase() bool {
	switch strings.ToLower(c.Driver) {
	case "kdb", "kingbase":
		return true
	}
	return false
}

// Load reads the config file at path, then .env and KDB_ variables.
// An empty path looks for kdb.yaml or kdb.yml in the working directory; a
// missing file is not an error in that case.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags is Load followed by command line flags. Only the --connection
// flag is read, and only when it was set, as the default connection.
func LoadWithFlags(path string, flags *pflag.FlagSet) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	k := koanf.New(".")

	cfgFile := findConfigFile(path)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Connections == nil {
		cfg.Connections = map[string]Connection{}
	}

	return &cfg, nil
}

// envKey maps KDB_CONNECTIONS__MAIN__HOST to connections.main.host.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func flagKey(f *pflag.Flag) (string, interface{}) {
	if f.Name != ConnectionFlag || !f.Changed {
		return "", nil
	}
	return "default", f.Value.String()
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{FileName, FileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Connection returns the named connection with defaults applied. An empty
// name selects the default connection, or the only one when there is no default.
func (c *Config) Connection(name string) (Connection, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		if len(c.Connections) != 1 {
			return Connection{}, ErrNoConnection
		}
		for only := range c.Connections {
			name = only
		}
	}

	conn, ok := c.Connections[name]
	if !ok {
		return Connection{}, fmt.Errorf("connection %q not found (available: %s)", name, strings.Join(c.Names(), ", "))
	}

	conn.Name = name
	conn.ApplyDefaults()
	return conn, nil
}

// Names returns the configured connection names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
