package providers

import (
	"fmt"
	"strings"

	"github.com/alc6/kdb/platforms"
	"github.com/alc6/kdb/schema"
)

// render formats a table according to params.Format
func render(table *schema.Table, params ExtractParams) (*SchemaResult, error) {
	result := &SchemaResult{
		Table:  table,
		Format: params.Format,
	}

	switch params.Format {
	case FormatInfo, "":
		result.Format = FormatInfo
		result.RawSQL = FormatTableInfo(table)
	case FormatSQL:
		p := params.Platform
		if p == nil {
			p = platforms.NewKdbPlatform()
		}
		result.RawSQL = FormatStatements(p.CreateTableSQL(table))
	case FormatYAML:
		out, err := schema.MarshalTable(table)
		if err != nil {
			return nil, err
		}
		result.RawSQL = string(out)
	default:
		return nil, fmt.Errorf("unsupported format: %s", params.Format)
	}

	return result, nil
}

// FormatTableInfo formats a table as human-readable text
func FormatTableInfo(table *schema.Table) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Table: %s\n", table.QualifiedName()))
	if table.Comment != "" {
		sb.WriteString(fmt.Sprintf("Comment: %s\n", table.Comment))
	}
	sb.WriteString("Columns:\n")

	primary := map[string]bool{}
	for _, idx := range table.Indexes {
		if idx.Primary {
			for _, c := range idx.Columns {
				primary[strings.ToLower(c)] = true
			}
		}
	}

	for _, col := range table.Columns {
		nullable := "NOT NULL"
		if !col.NotNull {
			nullable = "NULL"
		}

		extra := ""
		if col.Default != nil {
			extra += fmt.Sprintf(" DEFAULT %s", *col.Default)
		}
		if col.Autoincrement {
			extra += " AUTOINCREMENT"
		}
		if primary[strings.ToLower(col.UnquotedName())] {
			extra += " (PRIMARY KEY)"
		}
		if col.Comment != "" {
			extra += fmt.Sprintf(" -- %s", col.Comment)
		}

		sb.WriteString(fmt.Sprintf("  - %s %s %s%s\n", col.Name, describeType(col), nullable, extra))
	}

	var secondary []*schema.Index
	for _, idx := range table.Indexes {
		if !idx.Primary {
			secondary = append(secondary, idx)
		}
	}
	if len(secondary) > 0 {
		sb.WriteString("Indexes:\n")
		for _, idx := range secondary {
			unique := ""
			if idx.Unique {
				unique = " (UNIQUE)"
			}
			sb.WriteString(fmt.Sprintf("  - %s on (%s)%s\n",
				idx.Name, strings.Join(idx.Columns, ", "), unique))
		}
	}

	if len(table.ForeignKeys) > 0 {
		sb.WriteString("Foreign keys:\n")
		for _, fk := range table.ForeignKeys {
			sb.WriteString(fmt.Sprintf("  - %s (%s) references %s (%s)\n",
				fk.Name, strings.Join(fk.LocalColumns, ", "), fk.ForeignTable, strings.Join(fk.ForeignColumns, ", ")))
		}
	}

	return sb.String()
}

// FormatStatements joins statements into a script, one per line
func FormatStatements(statements []string) string {
	if len(statements) == 0 {
		return ""
	}
	return strings.Join(statements, ";\n") + ";\n"
}

func describeType(col *schema.Column) string {
	if col.ColumnDefinition != "" {
		return col.ColumnDefinition
	}
	switch col.Type {
	case schema.TypeString:
		if col.Length > 0 {
			return fmt.Sprintf("%s(%d)", col.Type, col.Length)
		}
	case schema.TypeDecimal:
		if col.Precision > 0 {
			return fmt.Sprintf("%s(%d,%d)", col.Type, col.Precision, col.Scale)
		}
	}
	return string(col.Type)
}
