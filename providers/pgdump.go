package providers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// dumpBinaries are tried in order. Kingbase ships sys_dump; pg_dump also
// works against it.
var dumpBinaries = []string{"sys_dump", "pg_dump"}

// DumpProvider uses the sys_dump or pg_dump binary to extract a table's DDL
type DumpProvider struct {
	lookPath func(string) (string, error)
}

// NewDumpProvider creates a new dump provider
func NewDumpProvider() SchemaProvider {
	return &DumpProvider{lookPath: exec.LookPath}
}

// Name returns the provider name
func (p *DumpProvider) Name() string {
	return "dump"
}

// IsAvailable checks if a dump binary is available in PATH
func (p *DumpProvider) IsAvailable() bool {
	_, err := p.binary()
	return err == nil
}

func (p *DumpProvider) binary() (string, error) {
	for _, name := range dumpBinaries {
		if path, err := p.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("none of %s found in PATH", strings.Join(dumpBinaries, ", "))
}

// ExtractTable dumps the DDL of one table
func (p *DumpProvider) ExtractTable(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.ConnectionString == "" {
		return nil, fmt.Errorf("dump provider requires connection string")
	}
	if params.Table == "" {
		return nil, fmt.Errorf("dump provider requires a table name")
	}

	// Only SQL format is supported by dump tools
	if params.Format != FormatSQL {
		return nil, fmt.Errorf("dump provider only supports SQL format")
	}

	bin, err := p.binary()
	if err != nil {
		return nil, err
	}

	table := params.Table
	if params.Schema != "" {
		table = params.Schema + "." + table
	}

	args := []string{
		"--schema-only",    // Only dump schema, no data
		"--no-owner",       // Don't include ownership information
		"--no-privileges",  // Don't include privilege information
		"--no-tablespaces", // Don't include tablespace information
		"--table", table,
		"--dbname", params.ConnectionString,
	}

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("executing dump", "binary", bin, "table", table)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\nstderr: %s", bin, err, stderr.String())
	}

	return &SchemaResult{
		RawSQL: cleanupDumpOutput(stdout.String()),
		Format: FormatSQL,
	}, nil
}

// cleanupDumpOutput removes session settings and comments from dump output
func cleanupDumpOutput(sql string) string {
	lines := strings.Split(sql, "\n")
	var cleaned []string
	skipStatement := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Skip empty lines and comments
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}

		// Skip the rest of a statement that was dropped below
		if skipStatement {
			if strings.HasSuffix(trimmed, ";") {
				skipStatement = false
			}
			continue
		}

		// SET and pg_catalog.set_config calls only configure the dump session
		if strings.HasPrefix(trimmed, "SET ") || strings.HasPrefix(trimmed, "SELECT pg_catalog.set_config") {
			skipStatement = !strings.HasSuffix(trimmed, ";")
			continue
		}

		// Meta commands emitted by newer dump versions
		if strings.HasPrefix(trimmed, `\`) {
			continue
		}

		cleaned = append(cleaned, line)
	}

	result := strings.Join(cleaned, "\n")
	result = strings.ReplaceAll(result, "CREATE TABLE public.", "CREATE TABLE ")
	result = strings.ReplaceAll(result, "ALTER TABLE public.", "ALTER TABLE ")
	result = strings.ReplaceAll(result, "ALTER TABLE ONLY public.", "ALTER TABLE ONLY ")

	return strings.TrimSpace(result) + "\n"
}
