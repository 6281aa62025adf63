package providers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alc6/kdb/schema"
)

// FileProvider reads a YAML table snapshot
type FileProvider struct{}

func NewFileProvider() SchemaProvider {
	return &FileProvider{}
}

func (p *FileProvider) Name() string {
	return "file"
}

func (p *FileProvider) IsAvailable() bool {
	return true
}

func (p *FileProvider) ExtractTable(ctx context.Context, params ExtractParams) (*SchemaResult, error) {
	if params.Path == "" {
		return nil, fmt.Errorf("file provider requires a snapshot path")
	}

	slog.Debug("loading table snapshot", "path", params.Path, "format", params.Format)

	table, err := schema.LoadTable(params.Path)
	if err != nil {
		return nil, err
	}
	if params.Table != "" && table.Name != params.Table {
		return nil, fmt.Errorf("snapshot %s describes table %s, not %s", params.Path, table.Name, params.Table)
	}

	return render(table, params)
}
