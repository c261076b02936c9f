package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	runner := NewRunner()

	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM buildings`))
	assert.Equal(t, 1, count)

	var name string
	require.NoError(t, db.Get(&name, `SELECT name FROM buildings WHERE id = 1`))
	assert.Equal(t, "Main Office Building", name)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	runner := NewRunner()

	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Reset(ctx, db))

	var tables int
	require.NoError(t, db.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('buildings', 'energy_readings', 'weather_data', 'alerts')`))
	assert.Zero(t, tables)
}

func TestDialectOf(t *testing.T) {
	d, err := DialectOf(sqlx.NewDb(nil, "postgres"))
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	d, err = DialectOf(openSQLite(t))
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	_, err = DialectOf(sqlx.NewDb(nil, "mysql"))
	assert.Error(t, err)
}
