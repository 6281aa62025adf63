package platforms

import (
	"strings"

	"github.com/alc6/kdb/schema"
)

// KdbPlatform is the Kingbase dialect. It differs from PostgreSQL in three ways:
// every identifier is wrapped in double quotes, diffs between binary family
// types are ignored, and a length change after a type change is not emitted twice.
type KdbPlatform struct {
	*PostgresPlatform
}

// NewKdbPlatform creates the Kingbase platform.
func NewKdbPlatform(opts ...Option) *KdbPlatform {
	base := NewPostgresPlatform(opts...)
	base.name = "kingbase"
	base.quote = Wrap
	return &KdbPlatform{PostgresPlatform: base}
}

// Wrap strips existing double quotes from an identifier and wraps it again,
// so wrapping an already quoted name is a no-op.
func Wrap(name string) string {
	return `"` + strings.Trim(name, `"`) + `"`
}

// AlterTableSQL returns the Kingbase statements for a table diff.
func (p *KdbPlatform) AlterTableSQL(diff *schema.TableDiff) []string {
	return p.alterTableSQL(diff, alterTableRules{
		skipColumn: isUnchangedBinaryColumn,
	})
}

// isUnchangedBinaryColumn reports whether a column diff only moves a column
// between binary family types. Kingbase stores all of them as BYTEA, so such
// a diff has no effect on the database.
func isUnchangedBinaryColumn(cd *schema.ColumnDiff) bool {
	if !cd.NewColumn.Type.IsBinary() {
		return false
	}

	if cd.OldColumn != nil {
		if !cd.OldColumn.Type.IsBinary() {
			return false
		}
		return cd.OnlyChanged(schema.PropertyType, schema.PropertyLength, schema.PropertyFixed)
	}

	if cd.HasTypeChanged() {
		return false
	}
	return cd.OnlyChanged(schema.PropertyLength, schema.PropertyFixed)
}
