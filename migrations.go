package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alc6/kdb/providers"
)

// migrationVersionLayout prefixes generated migration files.
const migrationVersionLayout = "20060102150405"

var nonWordChars = regexp.MustCompile(`[^a-z0-9]+`)

type Migration struct {
	Name     string
	UpFile   string
	DownFile string
}

func ParseMigrations(migrationDir string) ([]Migration, error) {
	slog.Debug("scanning migration directory", "directory", migrationDir)
	upFiles := make(map[string]string)
	downFiles := make(map[string]string)

	err := filepath.WalkDir(migrationDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		fileName := d.Name()
		if strings.HasSuffix(fileName, ".up.sql") {
			baseName := strings.TrimSuffix(fileName, ".up.sql")
			upFiles[baseName] = path
			slog.Debug("found up migration", "name", baseName, "file", path)
		} else if strings.HasSuffix(fileName, ".down.sql") {
			baseName := strings.TrimSuffix(fileName, ".down.sql")
			downFiles[baseName] = path
			slog.Debug("found down migration", "name", baseName, "file", path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk migration directory: %w", err)
	}

	var migrations []Migration
	for baseName, upFile := range upFiles {
		migration := Migration{
			Name:   baseName,
			UpFile: upFile,
		}
		if downFile, exists := downFiles[baseName]; exists {
			migration.DownFile = downFile
		}
		migrations = append(migrations, migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	slog.Info("parsed migrations", "count", len(migrations), "upFiles", len(upFiles), "downFiles", len(downFiles))
	return migrations, nil
}

// MigrationName builds the versioned base name of a migration pair, for
// example 20240102030405_add_user_age.
func MigrationName(name string, now time.Time) string {
	slug := strings.Trim(nonWordChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		slug = "alter_table"
	}
	return now.UTC().Format(migrationVersionLayout) + "_" + slug
}

// WriteMigration writes up and down statements as a migration pair in dir.
// The down file is omitted when there are no down statements.
func WriteMigration(dir, name string, now time.Time, up, down []string) (Migration, error) {
	if len(up) == 0 {
		return Migration{}, fmt.Errorf("no statements to write for migration %s", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Migration{}, fmt.Errorf("failed to create migration directory: %w", err)
	}

	migration := Migration{Name: MigrationName(name, now)}
	migration.UpFile = filepath.Join(dir, migration.Name+".up.sql")
	if err := os.WriteFile(migration.UpFile, []byte(providers.FormatStatements(up)), 0o644); err != nil {
		return Migration{}, fmt.Errorf("failed to write up migration: %w", err)
	}

	if len(down) > 0 {
		migration.DownFile = filepath.Join(dir, migration.Name+".down.sql")
		if err := os.WriteFile(migration.DownFile, []byte(providers.FormatStatements(down)), 0o644); err != nil {
			return Migration{}, fmt.Errorf("failed to write down migration: %w", err)
		}
	}

	slog.Info("wrote migration", "name", migration.Name, "up", len(up), "down", len(down))
	return migration, nil
}
