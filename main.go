package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alc6/kdb/config"
	"github.com/alc6/kdb/connection"
	"github.com/alc6/kdb/providers"
)

var (
	mcpMode    bool
	configPath string
	verbose    bool

	outDir         string
	migrationName  string
	dialect        string
	connectionName string
	applyChanges   bool
	showFormat     string
	showProvider   string
	showSchema     string
	postgresImage  string
	verifyDown     bool

	logLevel = new(slog.LevelVar)
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "kdb",
	Short: "Generate Kingbase ALTER TABLE migrations from table snapshots",
	Long: `kdb compares YAML table snapshots and generates the ALTER TABLE statements
for Kingbase (or plain PostgreSQL).

Commands:
  alter:   diff two snapshot files and print or write a migration pair
  diff:    compare a snapshot with the live table behind a connection
  show:    print a live table as info, sql or yaml
  verify:  run migration files against a scratch database
  drivers: list the connection drivers
  --mcp:   run as Model Context Protocol server`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logLevel.Set(slog.LevelDebug)
		}
	},
	Args: func(cmd *cobra.Command, args []string) error {
		if mcpMode {
			return nil
		}
		return cobra.NoArgs(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !mcpMode {
			return cmd.Help()
		}
		slog.Info("starting mcp server")
		return StartMCPServer()
	},
}

var alterCmd = &cobra.Command{
	Use:   "alter OLD_SNAPSHOT NEW_SNAPSHOT",
	Short: "Generate ALTER TABLE statements between two table snapshots",
	Args:  cobra.ExactArgs(2),
	RunE:  runAlter,
}

var diffCmd = &cobra.Command{
	Use:   "diff SNAPSHOT",
	Short: "Compare a table snapshot with the live database",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

var showCmd = &cobra.Command{
	Use:   "show TABLE",
	Short: "Show the definition of a live table",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var verifyCmd = &cobra.Command{
	Use:   "verify MIGRATION_DIR",
	Short: "Run migrations against a scratch database",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the supported connection drivers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		writeDrivers(cmd.OutOrStdout(), newResolver(slog.Default()))
		return nil
	},
}

func main() {
	if err := run(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logLevel.Set(slog.LevelInfo)
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	registerFlags()
	return rootCmd.Execute()
}

func registerFlags() {
	if rootCmd.Flags().Lookup("mcp") == nil {
		rootCmd.Flags().BoolVar(&mcpMode, "mcp", false, "Run as Model Context Protocol server")
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default kdb.yaml)")
		rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
		rootCmd.PersistentFlags().StringVar(&connectionName, config.ConnectionFlag, "", "Connection name from the config file (default from config)")
	}

	if alterCmd.Flags().Lookup("out") == nil {
		alterCmd.Flags().StringVarP(&outDir, "out", "o", "", "Write a migration pair into this directory")
		alterCmd.Flags().StringVarP(&migrationName, "name", "n", "", "Migration name (default alter_<table>)")
		alterCmd.Flags().StringVarP(&dialect, "dialect", "d", "kingbase", "SQL dialect: kingbase or postgres")
	}
	if diffCmd.Flags().Lookup("apply") == nil {
		diffCmd.Flags().BoolVar(&applyChanges, "apply", false, "Execute the statements in one transaction")
	}
	if showCmd.Flags().Lookup("format") == nil {
		showCmd.Flags().StringVarP(&showFormat, "format", "f", "info", "Output format: info, sql or yaml")
		showCmd.Flags().StringVarP(&showProvider, "provider", "p", "native", "Extraction provider: native or dump")
		showCmd.Flags().StringVarP(&showSchema, "schema", "s", "", "Table schema (default from the connection)")
	}
	if verifyCmd.Flags().Lookup("image") == nil {
		verifyCmd.Flags().StringVar(&postgresImage, "image", DefaultImage, "Database image")
		verifyCmd.Flags().BoolVar(&verifyDown, "down", false, "Also run the down migrations in reverse order")
	}

	if len(rootCmd.Commands()) == 0 {
		rootCmd.AddCommand(alterCmd, diffCmd, showCmd, verifyCmd, driversCmd)
	}
}

func newResolver(logger *slog.Logger) *connection.Resolver {
	bindings := append(connection.KingbaseBindings(), connection.PostgresBindings()...)
	return connection.NewResolver(logger, bindings...)
}

func runAlter(cmd *cobra.Command, args []string) error {
	result, err := alterTableCore(NewFileSnapshotLoader(), args[0], args[1], dialect)
	if errors.Is(err, ErrNoChanges) {
		warnColor.Fprintln(cmd.OutOrStdout(), "-- no changes")
		return nil
	}
	if err != nil {
		return err
	}

	if outDir == "" {
		writeStatements(cmd.OutOrStdout(), "up", result.Up)
		writeStatements(cmd.OutOrStdout(), "down", result.Down)
		return nil
	}

	name := migrationName
	if name == "" {
		name = "alter_" + result.Table
	}
	migration, err := NewFileMigrationWriter().WriteMigration(outDir, name, result.Up, result.Down)
	if err != nil {
		return err
	}

	okColor.Fprintf(cmd.OutOrStdout(), "wrote %s\n", migration.UpFile)
	if migration.DownFile != "" {
		okColor.Fprintf(cmd.OutOrStdout(), "wrote %s\n", migration.DownFile)
	}
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	desired, err := NewFileSnapshotLoader().LoadTable(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	opener := NewConfigConnectionOpener(configPath, cmd.Flags(), slog.Default())
	statements, err := diffLiveCore(cmd.Context(), opener, NewNativeIntrospector(), "", desired, applyChanges)
	if err != nil {
		return err
	}

	if len(statements) == 0 {
		okColor.Fprintf(cmd.OutOrStdout(), "-- %s is up to date\n", desired.QualifiedName())
		return nil
	}

	writeStatements(cmd.OutOrStdout(), desired.QualifiedName(), statements)
	if applyChanges {
		okColor.Fprintf(cmd.OutOrStdout(), "-- applied %d statements\n", len(statements))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	output, err := showTableCore(cmd.Context(), NewConfigConnectionOpener(configPath, cmd.Flags(), slog.Default()),
		providers.DefaultRegistry(), "", showProvider, showSchema, args[0], showFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// showTableCore extracts a live table with the named provider.
func showTableCore(ctx context.Context, opener ConnectionOpener, registry *providers.ProviderRegistry,
	connName, providerName, namespace, table, format string) (string, error) {
	provider, exists := registry.Get(providerName)
	if !exists {
		return "", fmt.Errorf("unknown provider: %s", providerName)
	}
	if !provider.IsAvailable() {
		return "", fmt.Errorf("provider '%s' is not available in this environment", providerName)
	}

	conn, err := opener.Open(ctx, connName)
	if err != nil {
		return "", fmt.Errorf("failed to open connection: %w", err)
	}
	defer conn.Close()

	p, err := conn.Platform(ctx)
	if err != nil {
		return "", err
	}

	if namespace == "" {
		namespace = conn.Config().Schema
	}

	result, err := provider.ExtractTable(ctx, providers.ExtractParams{
		DB:               conn.DB(),
		ConnectionString: connection.BuildDSN(conn.Config()),
		Schema:           namespace,
		Table:            table,
		Platform:         p,
		Format:           providers.SchemaFormat(format),
	})
	if err != nil {
		return "", fmt.Errorf("failed to extract table: %w", err)
	}
	return result.RawSQL, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	migrations, err := verifyMigrationsCore(cmd.Context(), args[0], NewFileMigrationReader(),
		NewPostgreSQLManager(postgresImage), verifyDown)
	if err != nil {
		return err
	}

	headerColor.Fprintln(cmd.OutOrStdout(), "=== VERIFIED MIGRATIONS ===")
	for _, m := range migrations {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m.Name)
	}
	okColor.Fprintf(cmd.OutOrStdout(), "%d migrations ok\n", len(migrations))
	return nil
}

// verifyMigrationsCore runs every up migration in a scratch database, and the
// down migrations in reverse when down is set.
func verifyMigrationsCore(ctx context.Context, migrationDir string, migrationReader MigrationReader,
	dbManager DatabaseManager, down bool) ([]Migration, error) {
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("migration directory does not exist: %s", migrationDir)
	}

	migrations, err := migrationReader.DiscoverMigrations(migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}
	if len(migrations) == 0 {
		return nil, fmt.Errorf("no migration files found in directory: %s", migrationDir)
	}

	slog.Info("setting up database")
	if err := dbManager.Setup(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to cleanup", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(ctx, migrations); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if down {
		if err := dbManager.RollbackMigrations(ctx, migrations); err != nil {
			return nil, fmt.Errorf("failed to roll back migrations: %w", err)
		}
	}

	return migrations, nil
}

func writeStatements(w io.Writer, title string, statements []string) {
	headerColor.Fprintf(w, "-- %s\n", title)
	fmt.Fprint(w, providers.FormatStatements(statements))
}

func writeDrivers(w io.Writer, resolver *connection.Resolver) {
	headerColor.Fprintln(w, "=== DRIVERS ===")
	for _, name := range resolver.Drivers() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
