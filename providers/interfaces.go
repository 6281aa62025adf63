package providers

import (
	"context"
	"database/sql"
	"sort"

	"github.com/alc6/kdb/platforms"
	"github.com/alc6/kdb/schema"
)

// SchemaProvider defines the interface for the different ways of obtaining a table snapshot
type SchemaProvider interface {
	// Name returns the provider name for identification
	Name() string

	// ExtractTable reads one table using the provider's method
	// The context allows for cancellation and timeout control
	ExtractTable(ctx context.Context, params ExtractParams) (*SchemaResult, error)

	// IsAvailable checks if this provider can be used in the current environment
	IsAvailable() bool
}

// ExtractParams contains parameters needed for table extraction
type ExtractParams struct {
	// DB is the database connection (used by SQL-based providers)
	DB *sql.DB

	// ConnectionString is the full connection string (used by external tools)
	ConnectionString string

	// Schema is the namespace of the table, public when empty
	Schema string

	// Table is the table to extract
	Table string

	// Path is the snapshot file (used by the file provider)
	Path string

	// Platform renders the sql format, Kingbase when nil
	Platform platforms.Platform

	// Format specifies the output format
	Format SchemaFormat
}

// SchemaFormat represents the desired output format
type SchemaFormat string

const (
	FormatInfo SchemaFormat = "info" // Human-readable format
	FormatSQL  SchemaFormat = "sql"  // SQL DDL format
	FormatYAML SchemaFormat = "yaml" // Table snapshot
)

// SchemaResult contains the extracted table in the requested format
type SchemaResult struct {
	// Table is nil for providers that only produce raw SQL
	Table *schema.Table

	// RawSQL contains the rendered output (DDL, info text or YAML)
	RawSQL string

	// Format indicates which format was used
	Format SchemaFormat
}

// ProviderRegistry manages available schema providers
type ProviderRegistry struct {
	providers map[string]SchemaProvider
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]SchemaProvider),
	}
}

// DefaultRegistry returns a registry with the native, file and dump providers.
func DefaultRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	r.Register(NewNativeProvider())
	r.Register(NewFileProvider())
	r.Register(NewDumpProvider())
	return r
}

// Register adds a provider to the registry
func (r *ProviderRegistry) Register(provider SchemaProvider) {
	r.providers[provider.Name()] = provider
}

// Get retrieves a provider by name
func (r *ProviderRegistry) Get(name string) (SchemaProvider, bool) {
	provider, exists := r.providers[name]
	return provider, exists
}

// ListAvailable returns all available providers, sorted
func (r *ProviderRegistry) ListAvailable() []string {
	var available []string
	for name, provider := range r.providers {
		if provider.IsAvailable() {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}
