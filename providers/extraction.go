package providers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alc6/kdb/schema"
)

// ErrTableNotFound is returned when the introspected table has no columns.
var ErrTableNotFound = errors.New("table not found")

const columnsQuery = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' AS is_nullable,
			c.column_default,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.is_identity = 'YES' AS is_identity,
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), '') AS comment
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

const indexesQuery = `
		SELECT
			i.relname,
			array_to_string(array_agg(a.attname ORDER BY k.ord), ',') AS columns,
			ix.indisunique,
			ix.indisprimary
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND t.relname = $2
		GROUP BY i.relname, ix.indisunique, ix.indisprimary
		ORDER BY i.relname
	`

const foreignKeysQuery = `
		SELECT
			con.conname,
			(SELECT string_agg(a.attname, ',' ORDER BY k.ord)
				FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
				JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum) AS columns,
			fn.nspname,
			ft.relname,
			(SELECT string_agg(a.attname, ',' ORDER BY k.ord)
				FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
				JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum) AS foreign_columns,
			con.confdeltype::text,
			con.confupdtype::text
		FROM pg_constraint con
		JOIN pg_class t ON t.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_class ft ON ft.oid = con.confrelid
		JOIN pg_namespace fn ON fn.oid = ft.relnamespace
		WHERE con.contype = 'f' AND n.nspname = $1 AND t.relname = $2
		ORDER BY con.conname
	`

const tableCommentQuery = `SELECT COALESCE(obj_description(format('%I.%I', $1::text, $2::text)::regclass, 'pg_class'), '')`

// IntrospectTable reads one table from information_schema and the catalog.
func IntrospectTable(ctx context.Context, db *sql.DB, namespace, tableName string) (*schema.Table, error) {
	if namespace == "" {
		namespace = "public"
	}
	slog.Debug("starting table introspection", "schema", namespace, "table", tableName)

	columns, err := getColumns(ctx, db, namespace, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, namespace, tableName)
	}
	slog.Debug("found table columns", "table", tableName, "count", len(columns))

	indexes, err := getIndexes(ctx, db, namespace, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes for table %s: %w", tableName, err)
	}
	slog.Debug("found table indexes", "table", tableName, "count", len(indexes))

	foreignKeys, err := getForeignKeys(ctx, db, namespace, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys for table %s: %w", tableName, err)
	}

	var comment string
	if err := db.QueryRowContext(ctx, tableCommentQuery, namespace, tableName).Scan(&comment); err != nil {
		return nil, fmt.Errorf("failed to get comment for table %s: %w", tableName, err)
	}

	table := &schema.Table{
		Name:    tableName,
		Comment: comment,
	}
	if namespace != "public" {
		table.Schema = namespace
	}

	for _, row := range columns {
		table.Columns = append(table.Columns, row.toColumn())
	}
	for _, row := range indexes {
		table.Indexes = append(table.Indexes, &schema.Index{
			Name:    row.Name,
			Columns: strings.Split(row.Columns, ","),
			Unique:  row.IsUnique,
			Primary: row.IsPrimary,
		})
	}
	for _, row := range foreignKeys {
		foreignTable := row.ForeignTable
		if row.ForeignSchema != namespace {
			foreignTable = row.ForeignSchema + "." + row.ForeignTable
		}
		table.ForeignKeys = append(table.ForeignKeys, &schema.ForeignKey{
			Name:           row.Name,
			LocalColumns:   strings.Split(row.Columns, ","),
			ForeignTable:   foreignTable,
			ForeignColumns: strings.Split(row.ForeignColumns, ","),
			OnDelete:       referentialAction(row.OnDelete),
			OnUpdate:       referentialAction(row.OnUpdate),
		})
	}

	slog.Info("table introspection completed", "table", table.QualifiedName(), "columns", len(table.Columns))
	return table, nil
}

func getColumns(ctx context.Context, db *sql.DB, namespace, tableName string) ([]columnRow, error) {
	rows, err := db.QueryContext(ctx, columnsQuery, namespace, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []columnRow
	for rows.Next() {
		var col columnRow
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.DefaultValue,
			&col.CharacterLength, &col.NumericPrecision, &col.NumericScale, &col.IsIdentity, &col.Comment); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func getIndexes(ctx context.Context, db *sql.DB, namespace, tableName string) ([]indexRow, error) {
	rows, err := db.QueryContext(ctx, indexesQuery, namespace, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []indexRow
	for rows.Next() {
		var idx indexRow
		if err := rows.Scan(&idx.Name, &idx.Columns, &idx.IsUnique, &idx.IsPrimary); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

func getForeignKeys(ctx context.Context, db *sql.DB, namespace, tableName string) ([]foreignKeyRow, error) {
	rows, err := db.QueryContext(ctx, foreignKeysQuery, namespace, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []foreignKeyRow
	for rows.Next() {
		var fk foreignKeyRow
		if err := rows.Scan(&fk.Name, &fk.Columns, &fk.ForeignSchema, &fk.ForeignTable,
			&fk.ForeignColumns, &fk.OnDelete, &fk.OnUpdate); err != nil {
			return nil, err
		}
		keys = append(keys, fk)
	}

	return keys, rows.Err()
}

func (r columnRow) toColumn() *schema.Column {
	col := &schema.Column{
		Name:          r.Name,
		NotNull:       !r.IsNullable,
		Autoincrement: r.IsIdentity,
		Comment:       r.Comment,
	}

	switch r.DataType {
	case "character varying":
		col.Type = schema.TypeString
		col.Length = int(r.CharacterLength.Int64)
	case "character":
		col.Type = schema.TypeString
		col.Length = int(r.CharacterLength.Int64)
		col.Fixed = true
	case "text":
		col.Type = schema.TypeText
	case "smallint":
		col.Type = schema.TypeSmallInt
	case "integer":
		col.Type = schema.TypeInteger
	case "bigint":
		col.Type = schema.TypeBigInt
	case "numeric":
		col.Type = schema.TypeDecimal
		col.Precision = int(r.NumericPrecision.Int64)
		col.Scale = int(r.NumericScale.Int64)
	case "real", "double precision":
		col.Type = schema.TypeFloat
	case "boolean":
		col.Type = schema.TypeBoolean
	case "date":
		col.Type = schema.TypeDate
	case "time without time zone":
		col.Type = schema.TypeTime
	case "timestamp without time zone":
		col.Type = schema.TypeDateTime
	case "timestamp with time zone":
		col.Type = schema.TypeDateTimeTZ
	case "uuid":
		col.Type = schema.TypeGUID
	case "bytea":
		col.Type = schema.TypeBlob
	case "json":
		col.Type = schema.TypeJSON
	case "jsonb":
		col.Type = schema.TypeJSONB
	default:
		// keep engine specific types verbatim
		col.Type = schema.TypeText
		col.ColumnDefinition = strings.ToUpper(r.DataType)
	}

	if r.DefaultValue.Valid {
		raw := r.DefaultValue.String
		if strings.HasPrefix(raw, "nextval(") {
			col.Autoincrement = true
		} else {
			col.Default = parseDefault(raw)
		}
	}

	return col
}

// parseDefault turns a catalog default expression into a plain value:
// 'active'::character varying becomes active, NULL becomes nil.
func parseDefault(raw string) *string {
	v := strings.TrimSpace(raw)

	if strings.HasPrefix(v, "'") {
		var sb strings.Builder
		for i := 1; i < len(v); i++ {
			if v[i] != '\'' {
				sb.WriteByte(v[i])
				continue
			}
			if i+1 < len(v) && v[i+1] == '\'' {
				sb.WriteByte('\'')
				i++
				continue
			}
			break
		}
		s := sb.String()
		return &s
	}

	if i := strings.Index(v, "::"); i > 0 {
		v = v[:i]
	}
	if strings.EqualFold(v, "NULL") {
		return nil
	}
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		v = v[1 : len(v)-1]
	}
	return &v
}

func referentialAction(code string) string {
	switch code {
	case "r":
		return "restrict"
	case "c":
		return "cascade"
	case "n":
		return "set null"
	case "d":
		return "set default"
	}
	return ""
}
