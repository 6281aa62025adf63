package platforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/alc6/kdb/mocks"
	"github.com/alc6/kdb/schema"
)

func TestKdbAlterTableSQL_Hooks(t *testing.T) {
	t.Run("handled_items_get_no_default_sql", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hooks := mocks.NewMockAlterTableHooks(ctrl)

		age := &schema.Column{Name: "age", Type: schema.TypeInteger, Comment: "user age"}
		legacy := &schema.Column{Name: "legacy", Type: schema.TypeBoolean}
		diff := &schema.TableDiff{
			Name:           "users",
			AddedColumns:   []*schema.Column{age},
			DroppedColumns: []*schema.Column{legacy},
		}

		hooks.EXPECT().HandleAddedColumn(age, diff).Return([]string{`ALTER TABLE "users" ADD "age" BIGINT`}, true)
		hooks.EXPECT().HandleDroppedColumn(legacy, diff).Return(nil, false)
		hooks.EXPECT().HandleAlterTable(diff).Return([]string{"SELECT 1"}, false)

		p := NewKdbPlatform(WithHooks(hooks))

		assert.Equal(t, []string{
			`ALTER TABLE "users" DROP "legacy"`,
			"SELECT 1",
			`ALTER TABLE "users" ADD "age" BIGINT`,
		}, p.AlterTableSQL(diff))
	})

	t.Run("unhandled_hook_sql_is_still_appended", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hooks := mocks.NewMockAlterTableHooks(ctrl)

		renamed := schema.RenamedColumn{OldName: "old_name", Column: &schema.Column{Name: "new_name", Type: schema.TypeText}}
		diff := &schema.TableDiff{Name: "t", RenamedColumns: []schema.RenamedColumn{renamed}}

		hooks.EXPECT().HandleRenamedColumn("old_name", renamed.Column, diff).Return([]string{"-- audit rename"}, false)
		hooks.EXPECT().HandleAlterTable(diff).Return(nil, false)

		p := NewKdbPlatform(WithHooks(hooks))

		assert.Equal(t, []string{
			`ALTER TABLE "t" RENAME COLUMN "old_name" TO "new_name"`,
			"-- audit rename",
		}, p.AlterTableSQL(diff))
	})

	t.Run("modified_column_hook_runs_before_binary_skip", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hooks := mocks.NewMockAlterTableHooks(ctrl)

		cd := &schema.ColumnDiff{
			OldColumn:         &schema.Column{Name: "data", Type: schema.TypeBinary},
			NewColumn:         &schema.Column{Name: "data", Type: schema.TypeBlob},
			ChangedProperties: []schema.Property{schema.PropertyType},
		}
		diff := &schema.TableDiff{Name: "files", ModifiedColumns: []*schema.ColumnDiff{cd}}

		hooks.EXPECT().HandleModifiedColumn(cd, diff).Return(nil, false)
		hooks.EXPECT().HandleAlterTable(diff).Return(nil, false)

		assert.Empty(t, NewKdbPlatform(WithHooks(hooks)).AlterTableSQL(diff))
	})

	t.Run("handled_table_skips_comments_rename_and_indexes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		hooks := mocks.NewMockAlterTableHooks(ctrl)

		age := &schema.Column{Name: "age", Type: schema.TypeInteger, Comment: "user age"}
		diff := &schema.TableDiff{
			Name:         "users",
			NewName:      "members",
			AddedColumns: []*schema.Column{age},
			AddedIndexes: []*schema.Index{{Name: "idx_age", Columns: []string{"age"}}},
		}

		hooks.EXPECT().HandleAddedColumn(age, diff).Return(nil, false)
		hooks.EXPECT().HandleAlterTable(diff).Return([]string{"-- table handled"}, true)

		assert.Equal(t, []string{
			`ALTER TABLE "users" ADD "age" INTEGER DEFAULT NULL`,
			"-- table handled",
		}, NewKdbPlatform(WithHooks(hooks)).AlterTableSQL(diff))
	})
}

type addedColumnHook struct {
	BaseHooks
	sql     []string
	handled bool
}

func (h addedColumnHook) HandleAddedColumn(*schema.Column, *schema.TableDiff) ([]string, bool) {
	return h.sql, h.handled
}

func TestChainHooks(t *testing.T) {
	diff := &schema.TableDiff{Name: "users"}
	col := &schema.Column{Name: "age", Type: schema.TypeInteger}

	t.Run("any_member_handles", func(t *testing.T) {
		chain := ChainHooks{
			addedColumnHook{sql: []string{"a"}},
			addedColumnHook{sql: []string{"b"}, handled: true},
		}

		sql, handled := chain.HandleAddedColumn(col, diff)
		assert.True(t, handled)
		assert.Equal(t, []string{"a", "b"}, sql)
	})

	t.Run("no_member_handles", func(t *testing.T) {
		chain := ChainHooks{BaseHooks{}, addedColumnHook{}}

		sql, handled := chain.HandleAddedColumn(col, diff)
		assert.False(t, handled)
		assert.Empty(t, sql)

		_, handled = chain.HandleAlterTable(diff)
		assert.False(t, handled)
	})
}
