package connection

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alc6/kdb/config"
	"github.com/alc6/kdb/driver"
	"github.com/alc6/kdb/testutil"
)

type fakeConnector struct {
	db     *sql.DB
	err    error
	called bool
	cfg    config.Connection
}

func (f *fakeConnector) Connect(ctx context.Context, cfg config.Connection) (*sql.DB, error) {
	f.called = true
	f.cfg = cfg
	return f.db, f.err
}

func TestResolver_Connect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)

	connector := &fakeConnector{db: db}
	r := NewResolver(testutil.NewTestLogger(t),
		Binding{Name: "kdb", Factory: NewKdbConnection, Connector: connector},
	)

	conn, err := r.Connect(context.Background(), config.Connection{Name: "main", Driver: "KDB"})
	require.NoError(t, err)

	assert.True(t, connector.called)
	assert.Equal(t, config.DefaultKingbasePort, connector.cfg.Port)
	assert.Equal(t, "main", conn.Name())
	_, ok := conn.Driver().(*driver.KdbDriver)
	assert.True(t, ok)
}

func TestResolver_UnknownDriver(t *testing.T) {
	r := NewResolver(nil, KingbaseBindings()...)

	_, err := r.Connect(context.Background(), config.Connection{Name: "x", Driver: "mysql"})
	require.Error(t, err)

	var unknown *UnknownDriverError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "mysql", unknown.Driver)
	assert.Equal(t, []string{"kdb", "kingbase"}, unknown.Available)
}

func TestResolver_ConnectError(t *testing.T) {
	r := NewResolver(nil, Binding{Name: "kdb", Factory: NewKdbConnection, Connector: &fakeConnector{err: assert.AnError}})

	_, err := r.Connect(context.Background(), config.Connection{Name: "main", Driver: "kdb"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResolver_Drivers(t *testing.T) {
	r := NewResolver(nil, append(KingbaseBindings(), PostgresBindings()...)...)
	assert.Equal(t, []string{"kdb", "kingbase", "pgsql", "postgres"}, r.Drivers())

	b, err := r.Resolve("kingbase")
	require.NoError(t, err)
	assert.Equal(t, "kingbase", b.Name)
	assert.IsType(t, KdbConnector{}, b.Connector)
}

func TestKingbaseBindings_BuildKingbaseConnections(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)

	for _, b := range KingbaseBindings() {
		conn := b.Factory(db, config.Connection{Name: b.Name}, nil)
		_, ok := conn.Driver().(*driver.KdbDriver)
		assert.True(t, ok, b.Name)
	}
	for _, b := range PostgresBindings() {
		conn := b.Factory(db, config.Connection{Name: b.Name}, nil)
		_, ok := conn.Driver().(*driver.PostgresDriver)
		assert.True(t, ok, b.Name)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Connection
		expected string
	}{
		{
			name:     "kingbase_defaults",
			cfg:      config.Connection{Driver: "kdb", Database: "app"},
			expected: "host=localhost port=54321 dbname=app sslmode=disable",
		},
		{
			name:     "postgres_with_credentials",
			cfg:      config.Connection{Driver: "postgres", Host: "db", Database: "app", Username: "u", Password: "p w'd"},
			expected: `host=db port=5432 dbname=app user=u password='p w\'d' sslmode=disable`,
		},
		{
			name:     "custom_schema",
			cfg:      config.Connection{Driver: "kdb", Port: 1, Schema: "sales", SSLMode: "require"},
			expected: "host=localhost port=1 sslmode=require search_path=sales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.cfg))
		})
	}
}

func TestKdbConnector_UnsupportedClient(t *testing.T) {
	_, err := KdbConnector{}.Connect(context.Background(), config.Connection{Client: "odbc"})
	assert.ErrorContains(t, err, "unsupported client")
}
