package providers

import (
	"context"
	"fmt"
	"log/slog"
)

// NativeProvider introspects a live table through information_schema and the catalog
type NativeProvider struct{}

// NewNativeProvider creates a new native provider
func NewNativeProvider() SchemaProvider {
	return &NativeProvider{}
}

// Name returns the provider name
func (p *NativeProvider) Name() string {
	return "native"
}

// IsAvailable always returns true for the native provider
func (p *NativeProvider) IsAvailable() bool {
	return true
}

// ExtractTable introspects the table named in params
func (p *NativeProvider) ExtractTable(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("native provider requires database connection")
	}
	if params.Table == "" {
		return nil, fmt.Errorf("native provider requires a table name")
	}

	slog.Debug("extracting table using native provider", "table", params.Table, "format", params.Format)

	table, err := IntrospectTable(ctx, params.DB, params.Schema, params.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to extract table: %w", err)
	}

	return render(table, params)
}
