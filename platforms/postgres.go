package platforms

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/alc6/kdb/schema"
)

// PostgresPlatform is the generic PostgreSQL dialect. Identifiers are quoted
// only when they are reserved words or not plain lowercase names.
type PostgresPlatform struct {
	name   string
	logger *slog.Logger
	hooks  AlterTableHooks
	quote  func(string) string

	renameDeprecation sync.Once
}

// NewPostgresPlatform creates the generic PostgreSQL platform.
func NewPostgresPlatform(opts ...Option) *PostgresPlatform {
	o := buildOptions(opts)
	p := &PostgresPlatform{
		name:   "postgres",
		logger: o.logger,
		hooks:  o.hooks,
	}
	p.quote = p.quoteIfNeeded
	return p
}

func (p *PostgresPlatform) Name() string {
	return p.name
}

// QuoteIdentifier quotes a single identifier using the platform's quoting rule.
func (p *PostgresPlatform) QuoteIdentifier(name string) string {
	return p.quote(name)
}

// CompareOptions makes diffs case sensitive. Generated SQL quotes every name
// that is not plain lowercase, so Email and email are different columns.
func (p *PostgresPlatform) CompareOptions() []schema.CompareOption {
	return []schema.CompareOption{schema.CaseSensitive()}
}

func (p *PostgresPlatform) quoteIfNeeded(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		return name
	}
	if !needsQuoting(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteStringLiteral quotes a string as a SQL literal.
func (p *PostgresPlatform) QuoteStringLiteral(value string) string {
	return pq.QuoteLiteral(value)
}

// TableNameSQL returns the quoted, schema qualified table name.
func (p *PostgresPlatform) TableNameSQL(table *schema.Table) string {
	if table.Schema == "" {
		return p.quote(table.Name)
	}
	return p.quote(table.Schema) + "." + p.quote(table.Name)
}

// TypeDeclarationSQL returns the SQL type of a column.
func (p *PostgresPlatform) TypeDeclarationSQL(col *schema.Column) string {
	switch col.Type {
	case schema.TypeSmallInt:
		if col.Autoincrement {
			return "SMALLSERIAL"
		}
		return "SMALLINT"
	case schema.TypeInteger:
		if col.Autoincrement {
			return "SERIAL"
		}
		return "INTEGER"
	case schema.TypeBigInt:
		if col.Autoincrement {
			return "BIGSERIAL"
		}
		return "BIGINT"
	case schema.TypeDecimal:
		precision, scale := col.Precision, col.Scale
		if precision == 0 {
			precision = 10
		}
		return fmt.Sprintf("NUMERIC(%d, %d)", precision, scale)
	case schema.TypeFloat:
		return "DOUBLE PRECISION"
	case schema.TypeString:
		length := col.Length
		if length == 0 {
			length = 255
		}
		if col.Fixed {
			return fmt.Sprintf("CHAR(%d)", length)
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case schema.TypeText:
		return "TEXT"
	case schema.TypeGUID:
		return "UUID"
	case schema.TypeBinary, schema.TypeBlob:
		return "BYTEA"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime:
		return "TIME(0) WITHOUT TIME ZONE"
	case schema.TypeDateTime:
		return "TIMESTAMP(0) WITHOUT TIME ZONE"
	case schema.TypeDateTimeTZ:
		return "TIMESTAMP(0) WITH TIME ZONE"
	case schema.TypeJSON:
		return "JSON"
	case schema.TypeJSONB:
		return "JSONB"
	default:
		return strings.ToUpper(string(col.Type))
	}
}

// ColumnDeclarationSQL returns "<name> <type> [DEFAULT ...] [NOT NULL]".
// The name is used as given.
func (p *PostgresPlatform) ColumnDeclarationSQL(name string, col *schema.Column) string {
	if col.ColumnDefinition != "" {
		return name + " " + col.ColumnDefinition
	}

	decl := p.TypeDeclarationSQL(col) + p.DefaultValueDeclarationSQL(col)
	if col.NotNull {
		decl += " NOT NULL"
	}
	return name + " " + decl
}

// DefaultValueDeclarationSQL returns the " DEFAULT ..." clause of a column,
// or an empty string when no clause is needed.
func (p *PostgresPlatform) DefaultValueDeclarationSQL(col *schema.Column) string {
	if col.Autoincrement && col.Type.IsInteger() {
		return ""
	}
	return p.defaultClause(col)
}

func (p *PostgresPlatform) defaultClause(col *schema.Column) string {
	if col.Default == nil {
		if col.NotNull {
			return ""
		}
		return " DEFAULT NULL"
	}

	value := *col.Default
	switch {
	case col.Type.IsInteger():
		return " DEFAULT " + value
	case col.Type.IsTemporal() && isCurrentTimeKeyword(value):
		return " DEFAULT " + strings.ToUpper(value)
	case col.Type == schema.TypeBoolean:
		return " DEFAULT " + convertBoolean(value)
	default:
		return " DEFAULT " + p.QuoteStringLiteral(value)
	}
}

func isCurrentTimeKeyword(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW()", "LOCALTIMESTAMP", "LOCALTIME":
		return true
	}
	return false
}

func convertBoolean(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "y", "yes", "on":
		return "true"
	}
	return "false"
}

// CommentOnColumnSQL returns a COMMENT ON COLUMN statement. Both names must
// already be quoted. An empty comment clears it.
func (p *PostgresPlatform) CommentOnColumnSQL(tableName, columnName, comment string) string {
	value := "NULL"
	if comment != "" {
		value = p.QuoteStringLiteral(comment)
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s", tableName, columnName, value)
}

// IdentitySequenceName returns the quoted name of the sequence backing an
// auto-increment column: <table>_<column>_seq, schema qualified when the
// table carries a schema.
func (p *PostgresPlatform) IdentitySequenceName(table *schema.Table, columnName string) string {
	seq := p.quote(schema.Unquote(table.Name) + "_" + schema.Unquote(columnName) + "_seq")
	if table.Schema == "" {
		return seq
	}
	return p.quote(schema.Unquote(table.Schema)) + "." + seq
}

// RenameTableSQL renames a table. The new name may not change the schema.
func (p *PostgresPlatform) RenameTableSQL(oldName, newName string) []string {
	oldSchema, oldTable := schema.SplitQualifiedName(oldName)
	_, newTable := schema.SplitQualifiedName(newName)

	return []string{fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
		p.TableNameSQL(&schema.Table{Schema: oldSchema, Name: oldTable}),
		p.quote(newTable))}
}

// PreAlterTableIndexForeignKeySQL drops the foreign keys and indexes that
// the diff removes or redefines.
func (p *PostgresPlatform) PreAlterTableIndexForeignKeySQL(diff *schema.TableDiff) []string {
	table := diff.Table()
	tableName := p.TableNameSQL(table)

	var sql []string
	for _, fk := range append(append([]*schema.ForeignKey{}, diff.DroppedForeignKeys...), diff.ModifiedForeignKeys...) {
		sql = append(sql, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", tableName, p.quote(fk.Name)))
	}
	for _, idx := range append(append([]*schema.Index{}, diff.DroppedIndexes...), diff.ModifiedIndexes...) {
		sql = append(sql, p.dropIndexSQL(table, idx))
	}
	return sql
}

func (p *PostgresPlatform) dropIndexSQL(table *schema.Table, idx *schema.Index) string {
	if idx.Primary {
		name := idx.Name
		if name == "" || strings.EqualFold(schema.Unquote(name), "primary") {
			name = schema.Unquote(table.Name) + "_pkey"
		}
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", p.TableNameSQL(table), p.quote(name))
	}
	return "DROP INDEX " + p.TableNameSQL(&schema.Table{Schema: table.Schema, Name: idx.Name})
}

// PostAlterTableIndexForeignKeySQL creates the foreign keys and indexes that
// the diff adds or redefines, then renames indexes. It targets the new table
// name when the diff renames the table.
func (p *PostgresPlatform) PostAlterTableIndexForeignKeySQL(diff *schema.TableDiff) []string {
	table := diff.Table()
	if diff.NewName != "" {
		_, name := schema.SplitQualifiedName(diff.NewName)
		table = &schema.Table{Schema: table.Schema, Name: name}
	}
	tableName := p.TableNameSQL(table)

	var sql []string
	for _, fk := range append(append([]*schema.ForeignKey{}, diff.AddedForeignKeys...), diff.ModifiedForeignKeys...) {
		sql = append(sql, p.createForeignKeySQL(tableName, fk))
	}
	for _, idx := range append(append([]*schema.Index{}, diff.AddedIndexes...), diff.ModifiedIndexes...) {
		sql = append(sql, p.createIndexSQL(tableName, idx))
	}
	for _, r := range diff.RenamedIndexes {
		sql = append(sql, fmt.Sprintf("ALTER INDEX %s RENAME TO %s",
			p.TableNameSQL(&schema.Table{Schema: table.Schema, Name: r.OldName}),
			p.quote(r.Index.Name)))
	}
	return sql
}

func (p *PostgresPlatform) createIndexSQL(tableName string, idx *schema.Index) string {
	columns := p.quoteList(idx.Columns)
	if idx.Primary {
		return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)", tableName, columns)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, p.quote(idx.Name), tableName, columns)
}

func (p *PostgresPlatform) createForeignKeySQL(tableName string, fk *schema.ForeignKey) string {
	foreignSchema, foreignTable := schema.SplitQualifiedName(fk.ForeignTable)

	var sb strings.Builder
	fmt.Fprintf(&sb, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		tableName,
		p.quote(fk.Name),
		p.quoteList(fk.LocalColumns),
		p.TableNameSQL(&schema.Table{Schema: foreignSchema, Name: foreignTable}),
		p.quoteList(fk.ForeignColumns))
	if fk.OnUpdate != "" {
		sb.WriteString(" ON UPDATE " + strings.ToUpper(fk.OnUpdate))
	}
	if fk.OnDelete != "" {
		sb.WriteString(" ON DELETE " + strings.ToUpper(fk.OnDelete))
	}
	sb.WriteString(" NOT DEFERRABLE INITIALLY IMMEDIATE")
	return sb.String()
}

func (p *PostgresPlatform) quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = p.quote(n)
	}
	return strings.Join(quoted, ", ")
}

// CreateTableSQL returns CREATE TABLE followed by index, foreign key and comment statements.
func (p *PostgresPlatform) CreateTableSQL(table *schema.Table) []string {
	tableName := p.TableNameSQL(table)

	var defs []string
	for _, col := range table.Columns {
		defs = append(defs, p.ColumnDeclarationSQL(p.quote(col.Name), col))
	}
	for _, idx := range table.Indexes {
		if idx.Primary {
			defs = append(defs, "PRIMARY KEY ("+p.quoteList(idx.Columns)+")")
		}
	}

	sql := []string{fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(defs, ", "))}

	for _, idx := range table.Indexes {
		if !idx.Primary {
			sql = append(sql, p.createIndexSQL(tableName, idx))
		}
	}
	for _, fk := range table.ForeignKeys {
		sql = append(sql, p.createForeignKeySQL(tableName, fk))
	}
	if table.Comment != "" {
		sql = append(sql, fmt.Sprintf("COMMENT ON TABLE %s IS %s", tableName, p.QuoteStringLiteral(table.Comment)))
	}
	for _, col := range table.Columns {
		if col.Comment != "" {
			sql = append(sql, p.CommentOnColumnSQL(tableName, p.quote(col.Name), col.Comment))
		}
	}
	return sql
}

// AlterTableSQL is the generic PostgreSQL generator.
func (p *PostgresPlatform) AlterTableSQL(diff *schema.TableDiff) []string {
	return p.alterTableSQL(diff, alterTableRules{lengthAfterTypeChange: true})
}

func (p *PostgresPlatform) warnRenameDeprecated() {
	p.renameDeprecation.Do(func() {
		p.logger.Warn("generating rename table SQL from a table diff is deprecated, use RenameTableSQL instead",
			"platform", p.name)
	})
}
