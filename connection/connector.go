package connection

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	// database/sql drivers: lib/pq registers "postgres", pgx registers "pgx"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/alc6/kdb/config"
)

// Connector opens a database handle for a connection config
type Connector interface {
	Connect(ctx context.Context, cfg config.Connection) (*sql.DB, error)
}

// KdbConnector opens PostgreSQL protocol connections, which covers both
// Kingbase and PostgreSQL servers.
type KdbConnector struct {
	Logger *slog.Logger
}

// Connect opens and pings the database.
func (k KdbConnector) Connect(ctx context.Context, cfg config.Connection) (*sql.DB, error) {
	cfg.ApplyDefaults()

	logger := k.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	driverName, err := sqlDriverName(cfg.Client)
	if err != nil {
		return nil, err
	}

	logger.Debug("connecting",
		slog.String("driver", cfg.Driver),
		slog.String("client", driverName),
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database))

	db, err := sql.Open(driverName, BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}

func sqlDriverName(client string) (string, error) {
	switch strings.ToLower(client) {
	case "", "pq":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported client %q (use pq or pgx)", client)
}

// BuildDSN returns a key=value connection string understood by lib/pq and pgx.
func BuildDSN(cfg config.Connection) string {
	cfg.ApplyDefaults()

	parts := []string{
		"host=" + dsnValue(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
	}
	if cfg.Database != "" {
		parts = append(parts, "dbname="+dsnValue(cfg.Database))
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+dsnValue(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+dsnValue(cfg.Password))
	}
	parts = append(parts, "sslmode="+dsnValue(cfg.SSLMode))
	if cfg.Schema != "" && cfg.Schema != "public" {
		parts = append(parts, "search_path="+dsnValue(cfg.Schema))
	}
	return strings.Join(parts, " ")
}

// dsnValue quotes a value containing spaces, quotes or backslashes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
