package providers

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alc6/kdb/schema"
)

func expectUsersTable(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "is_nullable", "column_default",
			"character_maximum_length", "numeric_precision", "numeric_scale", "is_identity", "comment",
		}).
			AddRow("id", "integer", false, "nextval('users_id_seq'::regclass)", nil, int64(32), int64(0), false, "").
			AddRow("email", "character varying", false, nil, int64(120), nil, nil, false, "login").
			AddRow("status", "character varying", true, "'active'::character varying", int64(20), nil, nil, false, "").
			AddRow("balance", "numeric", false, "0", nil, int64(12), int64(2), false, "").
			AddRow("avatar", "bytea", true, nil, nil, nil, nil, false, "").
			AddRow("location", "point", true, nil, nil, nil, nil, false, ""))

	mock.ExpectQuery("FROM pg_index").
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"relname", "columns", "indisunique", "indisprimary"}).
			AddRow("idx_email", "email", true, false).
			AddRow("users_pkey", "id", true, true))

	mock.ExpectQuery("FROM pg_constraint").
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"conname", "columns", "nspname", "relname", "foreign_columns", "confdeltype", "confupdtype"}).
			AddRow("fk_team", "team_id", "public", "teams", "id", "c", "a"))

	mock.ExpectQuery("obj_description").
		WithArgs("public", "users").
		WillReturnRows(sqlmock.NewRows([]string{"comment"}).AddRow("registered people"))
}

func TestIntrospectTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectUsersTable(mock)

	table, err := IntrospectTable(context.Background(), db, "", "users")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "users", table.Name)
	assert.Empty(t, table.Schema)
	assert.Equal(t, "registered people", table.Comment)
	require.Len(t, table.Columns, 6)

	id := table.Column("id")
	assert.Equal(t, schema.TypeInteger, id.Type)
	assert.True(t, id.Autoincrement)
	assert.Nil(t, id.Default)
	assert.True(t, id.NotNull)

	email := table.Column("email")
	assert.Equal(t, schema.TypeString, email.Type)
	assert.Equal(t, 120, email.Length)
	assert.Equal(t, "login", email.Comment)

	status := table.Column("status")
	require.NotNil(t, status.Default)
	assert.Equal(t, "active", *status.Default)
	assert.False(t, status.NotNull)

	balance := table.Column("balance")
	assert.Equal(t, schema.TypeDecimal, balance.Type)
	assert.Equal(t, 12, balance.Precision)
	assert.Equal(t, 2, balance.Scale)
	assert.Equal(t, "0", *balance.Default)

	assert.Equal(t, schema.TypeBlob, table.Column("avatar").Type)
	assert.Equal(t, "POINT", table.Column("location").ColumnDefinition)

	pk := table.Index("users_pkey")
	require.NotNil(t, pk)
	assert.True(t, pk.Primary)

	fk := table.ForeignKey("fk_team")
	require.NotNil(t, fk)
	assert.Equal(t, "teams", fk.ForeignTable)
	assert.Equal(t, "cascade", fk.OnDelete)
	assert.Empty(t, fk.OnUpdate)
}

func TestIntrospectTableNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("app", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"column_name", "data_type", "is_nullable", "column_default",
			"character_maximum_length", "numeric_precision", "numeric_scale", "is_identity", "comment",
		}))

	_, err = IntrospectTable(context.Background(), db, "app", "ghost")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestIntrospectTableQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM information_schema.columns").WillReturnError(assert.AnError)

	_, err = IntrospectTable(context.Background(), db, "public", "users")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestParseDefault(t *testing.T) {
	tests := []struct {
		raw      string
		expected *string
	}{
		{"'active'::character varying", ptr("active")},
		{"'it''s'::text", ptr("it's")},
		{"'-1'::integer", ptr("-1")},
		{"0", ptr("0")},
		{"true", ptr("true")},
		{"now()", ptr("now()")},
		{"CURRENT_TIMESTAMP", ptr("CURRENT_TIMESTAMP")},
		{"NULL::character varying", nil},
		{"(-5)", ptr("-5")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseDefault(tt.raw))
		})
	}
}

func ptr(s string) *string {
	return &s
}

func TestNativeProvider(t *testing.T) {
	p := NewNativeProvider()
	assert.Equal(t, "native", p.Name())
	assert.True(t, p.IsAvailable())

	t.Run("requires_db", func(t *testing.T) {
		_, err := p.ExtractTable(context.Background(), ExtractParams{Table: "users"})
		assert.Error(t, err)
	})

	t.Run("requires_table", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, err = p.ExtractTable(context.Background(), ExtractParams{DB: db})
		assert.Error(t, err)
	})

	t.Run("sql_format", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		expectUsersTable(mock)

		result, err := p.ExtractTable(context.Background(), ExtractParams{DB: db, Table: "users", Format: FormatSQL})
		require.NoError(t, err)

		assert.Equal(t, FormatSQL, result.Format)
		assert.NotNil(t, result.Table)
		assert.Contains(t, result.RawSQL, `CREATE TABLE "users" ("id" SERIAL NOT NULL`)
		assert.Contains(t, result.RawSQL, `CREATE UNIQUE INDEX "idx_email" ON "users" ("email");`)
	})
}
