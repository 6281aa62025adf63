package schema

import "strings"

// Column describes a column of a table
type Column struct {
	Name      string
	Type      Type
	Length    int
	Precision int
	Scale     int
	Fixed     bool
	NotNull   bool
	// Default is nil when the column has no default value
	Default       *string
	Autoincrement bool
	Comment       string
	// ColumnDefinition replaces the generated type declaration when set
	ColumnDefinition string
}

// UnquotedName returns the column name without surrounding double quotes.
func (c *Column) UnquotedName() string {
	return Unquote(c.Name)
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	clone := *c
	if c.Default != nil {
		v := *c.Default
		clone.Default = &v
	}
	return &clone
}

// Index describes a table index or primary key
type Index struct {
	Name    string
	Columns []string
	Unique  bool
	Primary bool
}

// ForeignKey describes a foreign key constraint
type ForeignKey struct {
	Name           string
	LocalColumns   []string
	ForeignTable   string
	ForeignColumns []string
	OnDelete       string
	OnUpdate       string
}

// Table describes a table snapshot
type Table struct {
	Schema      string
	Name        string
	Columns     []*Column
	Indexes     []*Index
	ForeignKeys []*ForeignKey
	Comment     string
}

// QualifiedName returns schema.name, or just the name when no schema is set.
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return Unquote(t.Name)
	}
	return Unquote(t.Schema) + "." + Unquote(t.Name)
}

// Column looks a column up by name, ignoring case and quoting.
func (t *Table) Column(name string) *Column {
	key := normalize(name)
	for _, c := range t.Columns {
		if normalize(c.Name) == key {
			return c
		}
	}
	return nil
}

// Index looks an index up by name, ignoring case and quoting.
func (t *Table) Index(name string) *Index {
	key := normalize(name)
	for _, idx := range t.Indexes {
		if normalize(idx.Name) == key {
			return idx
		}
	}
	return nil
}

// ForeignKey looks a foreign key up by name, ignoring case and quoting.
func (t *Table) ForeignKey(name string) *ForeignKey {
	key := normalize(name)
	for _, fk := range t.ForeignKeys {
		if normalize(fk.Name) == key {
			return fk
		}
	}
	return nil
}

// Unquote strips surrounding double quotes from an identifier.
func Unquote(name string) string {
	return strings.Trim(name, `"`)
}

// SplitQualifiedName splits "schema.name" into its parts. Quoted names are
// never split.
func SplitQualifiedName(name string) (string, string) {
	if strings.HasPrefix(name, `"`) {
		return "", name
	}
	if i := strings.Index(name, "."); i > 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func normalize(name string) string {
	return strings.ToLower(Unquote(name))
}
