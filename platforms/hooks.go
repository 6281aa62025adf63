package platforms

import "github.com/alc6/kdb/schema"

//go:generate mockgen -source=hooks.go -destination=../mocks/mock_hooks.go -package=mocks

// AlterTableHooks lets callers replace the SQL generated for individual parts
// of a table diff. Each method returns the statements it contributes and
// whether it handled the item; a handled item gets no default SQL.
type AlterTableHooks interface {
	HandleAddedColumn(column *schema.Column, diff *schema.TableDiff) ([]string, bool)
	HandleDroppedColumn(column *schema.Column, diff *schema.TableDiff) ([]string, bool)
	HandleModifiedColumn(columnDiff *schema.ColumnDiff, diff *schema.TableDiff) ([]string, bool)
	HandleRenamedColumn(oldName string, column *schema.Column, diff *schema.TableDiff) ([]string, bool)
	HandleAlterTable(diff *schema.TableDiff) ([]string, bool)
}

// BaseHooks handles nothing. Embed it to implement only some hooks.
type BaseHooks struct{}

func (BaseHooks) HandleAddedColumn(*schema.Column, *schema.TableDiff) ([]string, bool) {
	return nil, false
}

func (BaseHooks) HandleDroppedColumn(*schema.Column, *schema.TableDiff) ([]string, bool) {
	return nil, false
}

func (BaseHooks) HandleModifiedColumn(*schema.ColumnDiff, *schema.TableDiff) ([]string, bool) {
	return nil, false
}

func (BaseHooks) HandleRenamedColumn(string, *schema.Column, *schema.TableDiff) ([]string, bool) {
	return nil, false
}

func (BaseHooks) HandleAlterTable(*schema.TableDiff) ([]string, bool) {
	return nil, false
}

// ChainHooks calls every member in order. Statements are concatenated and the
// item counts as handled when any member handled it.
type ChainHooks []AlterTableHooks

func (c ChainHooks) HandleAddedColumn(column *schema.Column, diff *schema.TableDiff) ([]string, bool) {
	return c.each(func(h AlterTableHooks) ([]string, bool) { return h.HandleAddedColumn(column, diff) })
}

func (c ChainHooks) HandleDroppedColumn(column *schema.Column, diff *schema.TableDiff) ([]string, bool) {
	return c.each(func(h AlterTableHooks) ([]string, bool) { return h.HandleDroppedColumn(column, diff) })
}

func (c ChainHooks) HandleModifiedColumn(columnDiff *schema.ColumnDiff, diff *schema.TableDiff) ([]string, bool) {
	return c.each(func(h AlterTableHooks) ([]string, bool) { return h.HandleModifiedColumn(columnDiff, diff) })
}

func (c ChainHooks) HandleRenamedColumn(oldName string, column *schema.Column, diff *schema.TableDiff) ([]string, bool) {
	return c.each(func(h AlterTableHooks) ([]string, bool) { return h.HandleRenamedColumn(oldName, column, diff) })
}

func (c ChainHooks) HandleAlterTable(diff *schema.TableDiff) ([]string, bool) {
	return c.each(func(h AlterTableHooks) ([]string, bool) { return h.HandleAlterTable(diff) })
}

func (c ChainHooks) each(call func(AlterTableHooks) ([]string, bool)) ([]string, bool) {
	var out []string
	handled := false
	for _, h := range c {
		sql, ok := call(h)
		out = append(out, sql...)
		handled = handled || ok
	}
	return out, handled
}
