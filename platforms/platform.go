// Package platforms turns schema diffs into dialect specific SQL statements.
package platforms

import (
	"log/slog"

	"github.com/alc6/kdb/schema"
)

// Platform generates DDL for one SQL dialect
type Platform interface {
	// Name returns the dialect name
	Name() string
	// QuoteIdentifier quotes a single table or column name
	QuoteIdentifier(name string) string
	// AlterTableSQL returns the statements that apply the diff, in execution order
	AlterTableSQL(diff *schema.TableDiff) []string
	// RenameTableSQL returns the statements that rename a table
	RenameTableSQL(oldName, newName string) []string
	// CreateTableSQL returns the statements that create the table with its indexes,
	// foreign keys and comments
	CreateTableSQL(table *schema.Table) []string
	// CompareOptions returns the options schema.Compare needs to match
	// identifiers the way the dialect resolves them
	CompareOptions() []schema.CompareOption
}

// Option configures a platform
type Option func(*options)

type options struct {
	logger *slog.Logger
	hooks  AlterTableHooks
}

// WithLogger sets the logger used for deprecation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks installs alter table hooks.
func WithHooks(hooks AlterTableHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.hooks == nil {
		o.hooks = BaseHooks{}
	}
	return o
}
