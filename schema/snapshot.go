package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type tableSpec struct {
	Schema      string           `yaml:"schema,omitempty"`
	Name        string           `yaml:"name"`
	Comment     string           `yaml:"comment,omitempty"`
	Columns     []columnSpec     `yaml:"columns"`
	Indexes     []indexSpec      `yaml:"indexes,omitempty"`
	ForeignKeys []foreignKeySpec `yaml:"foreign_keys,omitempty"`
}

type columnSpec struct {
	Name             string  `yaml:"name"`
	Type             string  `yaml:"type"`
	Length           int     `yaml:"length,omitempty"`
	Precision        int     `yaml:"precision,omitempty"`
	Scale            int     `yaml:"scale,omitempty"`
	Fixed            bool    `yaml:"fixed,omitempty"`
	Nullable         bool    `yaml:"nullable,omitempty"`
	Default          *string `yaml:"default,omitempty"`
	Autoincrement    bool    `yaml:"autoincrement,omitempty"`
	Comment          string  `yaml:"comment,omitempty"`
	ColumnDefinition string  `yaml:"definition,omitempty"`
}

type indexSpec struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique,omitempty"`
	Primary bool     `yaml:"primary,omitempty"`
}

type foreignKeySpec struct {
	Name           string   `yaml:"name"`
	Columns        []string `yaml:"columns"`
	ForeignTable   string   `yaml:"foreign_table"`
	ForeignColumns []string `yaml:"foreign_columns"`
	OnDelete       string   `yaml:"on_delete,omitempty"`
	OnUpdate       string   `yaml:"on_update,omitempty"`
}

// ParseTable decodes a YAML table snapshot.
func ParseTable(data []byte) (*Table, error) {
	var spec tableSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode table snapshot: %w", err)
	}
	if spec.Name == "" {
		return nil, fmt.Errorf("table snapshot has no name")
	}

	table := &Table{
		Schema:  spec.Schema,
		Name:    spec.Name,
		Comment: spec.Comment,
	}

	for _, cs := range spec.Columns {
		if cs.Name == "" {
			return nil, fmt.Errorf("table %s: column without name", spec.Name)
		}
		t, err := ParseType(cs.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", spec.Name, cs.Name, err)
		}
		table.Columns = append(table.Columns, &Column{
			Name:             cs.Name,
			Type:             t,
			Length:           cs.Length,
			Precision:        cs.Precision,
			Scale:            cs.Scale,
			Fixed:            cs.Fixed,
			NotNull:          !cs.Nullable,
			Default:          cs.Default,
			Autoincrement:    cs.Autoincrement,
			Comment:          cs.Comment,
			ColumnDefinition: cs.ColumnDefinition,
		})
	}

	for _, is := range spec.Indexes {
		table.Indexes = append(table.Indexes, &Index{
			Name:    is.Name,
			Columns: is.Columns,
			Unique:  is.Unique || is.Primary,
			Primary: is.Primary,
		})
	}

	for _, fs := range spec.ForeignKeys {
		table.ForeignKeys = append(table.ForeignKeys, &ForeignKey{
			Name:           fs.Name,
			LocalColumns:   fs.Columns,
			ForeignTable:   fs.ForeignTable,
			ForeignColumns: fs.ForeignColumns,
			OnDelete:       fs.OnDelete,
			OnUpdate:       fs.OnUpdate,
		})
	}

	return table, nil
}

// LoadTable reads a YAML table snapshot from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table snapshot %s: %w", path, err)
	}
	return ParseTable(data)
}

// MarshalTable encodes a table as a YAML snapshot.
func MarshalTable(t *Table) ([]byte, error) {
	spec := tableSpec{
		Schema:  t.Schema,
		Name:    t.Name,
		Comment: t.Comment,
	}

	for _, c := range t.Columns {
		spec.Columns = append(spec.Columns, columnSpec{
			Name:             c.Name,
			Type:             string(c.Type),
			Length:           c.Length,
			Precision:        c.Precision,
			Scale:            c.Scale,
			Fixed:            c.Fixed,
			Nullable:         !c.NotNull,
			Default:          c.Default,
			Autoincrement:    c.Autoincrement,
			Comment:          c.Comment,
			ColumnDefinition: c.ColumnDefinition,
		})
	}

	for _, idx := range t.Indexes {
		spec.Indexes = append(spec.Indexes, indexSpec{
			Name:    idx.Name,
			Columns: idx.Columns,
			Unique:  idx.Unique,
			Primary: idx.Primary,
		})
	}

	for _, fk := range t.ForeignKeys {
		spec.ForeignKeys = append(spec.ForeignKeys, foreignKeySpec{
			Name:           fk.Name,
			Columns:        fk.LocalColumns,
			ForeignTable:   fk.ForeignTable,
			ForeignColumns: fk.ForeignColumns,
			OnDelete:       fk.OnDelete,
			OnUpdate:       fk.OnUpdate,
		})
	}

	out, err := yaml.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode table snapshot: %w", err)
	}
	return out, nil
}
