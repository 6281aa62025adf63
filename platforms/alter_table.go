package platforms

import (
	"fmt"

	"github.com/alc6/kdb/schema"
)

type alterTableRules struct {
	// skipColumn drops a modified column diff before any SQL is generated for it
	skipColumn func(*schema.ColumnDiff) bool
	// lengthAfterTypeChange emits the length TYPE statement even when the
	// type statement already rewrote the column
	lengthAfterTypeChange bool
}

func (p *PostgresPlatform) alterTableSQL(diff *schema.TableDiff, rules alterTableRules) []string {
	var sql, commentsSQL, columnSQL []string

	table := diff.Table()
	tableName := p.TableNameSQL(table)
	alter := func(clause string) string {
		return "ALTER TABLE " + tableName + " " + clause
	}

	for _, col := range diff.AddedColumns {
		hookSQL, handled := p.hooks.HandleAddedColumn(col, diff)
		columnSQL = append(columnSQL, hookSQL...)
		if handled {
			continue
		}

		columnName := p.quote(col.Name)
		sql = append(sql, alter("ADD "+p.ColumnDeclarationSQL(columnName, col)))

		if col.Comment != "" {
			commentsSQL = append(commentsSQL, p.CommentOnColumnSQL(tableName, columnName, col.Comment))
		}
	}

	for _, col := range diff.DroppedColumns {
		hookSQL, handled := p.hooks.HandleDroppedColumn(col, diff)
		columnSQL = append(columnSQL, hookSQL...)
		if handled {
			continue
		}

		sql = append(sql, alter("DROP "+p.quote(col.Name)))
	}

	for _, cd := range diff.ModifiedColumns {
		hookSQL, handled := p.hooks.HandleModifiedColumn(cd, diff)
		columnSQL = append(columnSQL, hookSQL...)
		if handled {
			continue
		}

		if rules.skipColumn != nil && rules.skipColumn(cd) {
			continue
		}

		stmts, comment := p.modifiedColumnSQL(table, tableName, cd, rules)
		sql = append(sql, stmts...)
		commentsSQL = append(commentsSQL, comment...)
	}

	for _, r := range diff.RenamedColumns {
		hookSQL, handled := p.hooks.HandleRenamedColumn(r.OldName, r.Column, diff)
		columnSQL = append(columnSQL, hookSQL...)
		if handled {
			continue
		}

		sql = append(sql, alter(fmt.Sprintf("RENAME COLUMN %s TO %s", p.quote(r.OldName), p.quote(r.Column.Name))))
	}

	tableSQL, handled := p.hooks.HandleAlterTable(diff)
	if !handled {
		sql = append(sql, commentsSQL...)

		if diff.NewName != "" {
			p.warnRenameDeprecated()
			_, newName := schema.SplitQualifiedName(diff.NewName)
			sql = append(sql, alter("RENAME TO "+p.quote(newName)))
		}

		sql = concat(
			p.PreAlterTableIndexForeignKeySQL(diff),
			sql,
			p.PostAlterTableIndexForeignKeySQL(diff),
		)
	}

	return concat(sql, tableSQL, columnSQL)
}

// modifiedColumnSQL returns the ALTER statements and the comment statements
// for one modified column.
func (p *PostgresPlatform) modifiedColumnSQL(table *schema.Table, tableName string, cd *schema.ColumnDiff, rules alterTableRules) ([]string, []string) {
	var sql, comments []string

	alter := func(clause string) string {
		return "ALTER TABLE " + tableName + " " + clause
	}

	newCol := cd.NewColumn
	oldName := p.quote(cd.OldName())

	// SERIAL and BIGSERIAL are not real types and cannot be the target of a TYPE change
	typeTarget := newCol.Clone()
	typeTarget.Autoincrement = false

	typeRewritten := false
	if cd.HasTypeChanged() || cd.HasPrecisionChanged() || cd.HasScaleChanged() || cd.HasFixedChanged() {
		sql = append(sql, alter("ALTER "+oldName+" TYPE "+p.TypeDeclarationSQL(typeTarget)))
		typeRewritten = true
	}

	if cd.HasDefaultChanged() {
		clause := " DROP DEFAULT"
		if newCol.Default != nil {
			clause = " SET" + p.defaultClause(newCol)
		}
		sql = append(sql, alter("ALTER "+oldName+clause))
	}

	if cd.HasNotNullChanged() {
		action := "DROP"
		if newCol.NotNull {
			action = "SET"
		}
		sql = append(sql, alter("ALTER "+oldName+" "+action+" NOT NULL"))
	}

	if cd.HasAutoincrementChanged() {
		if newCol.Autoincrement {
			seq := p.IdentitySequenceName(table, cd.OldName())
			seqLiteral := p.QuoteStringLiteral(seq)
			sql = append(sql,
				"CREATE SEQUENCE "+seq,
				fmt.Sprintf("SELECT setval(%s, (SELECT MAX(%s) FROM %s))", seqLiteral, oldName, tableName),
				alter("ALTER "+oldName+" SET DEFAULT nextval("+seqLiteral+")"),
			)
		} else {
			// the sequence may be shared with other tables, so it is kept
			sql = append(sql, alter("ALTER "+oldName+" DROP DEFAULT"))
		}
	}

	oldComment := ""
	if cd.OldColumn != nil {
		oldComment = cd.OldColumn.Comment
	}
	if cd.HasCommentChanged() || (cd.OldColumn != nil && oldComment != newCol.Comment) {
		comments = append(comments, p.CommentOnColumnSQL(tableName, p.quote(newCol.Name), newCol.Comment))
	}

	if cd.HasLengthChanged() && (rules.lengthAfterTypeChange || !typeRewritten) {
		sql = append(sql, alter("ALTER "+oldName+" TYPE "+p.TypeDeclarationSQL(typeTarget)))
	}

	return sql, comments
}

func concat(parts ...[]string) []string {
	var out []string
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}
