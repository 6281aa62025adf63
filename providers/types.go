package providers

import "database/sql"

// columnRow is one row of the column introspection query
type columnRow struct {
	Name             string
	DataType         string
	IsNullable       bool
	DefaultValue     sql.NullString
	CharacterLength  sql.NullInt64
	NumericPrecision sql.NullInt64
	NumericScale     sql.NullInt64
	IsIdentity       bool
	Comment          string
}

// indexRow is one row of the index introspection query
type indexRow struct {
	Name      string
	Columns   string
	IsUnique  bool
	IsPrimary bool
}

// foreignKeyRow is one row of the foreign key introspection query
type foreignKeyRow struct {
	Name           string
	Columns        string
	ForeignSchema  string
	ForeignTable   string
	ForeignColumns string
	OnDelete       string
	OnUpdate       string
}
