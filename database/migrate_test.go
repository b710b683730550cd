package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, MigrateSQLite(ctx, db))

	_, err := db.ExecContext(ctx,
		`INSERT INTO documents (collection, key, fields) VALUES (?, ?, ?)`,
		"themes", "t1", []byte{0xa0})
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash) VALUES (?, ?, ?)`,
		"id-1", "a@b.com", "hash")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash) VALUES (?, ?, ?)`,
		"id-2", "a@b.com", "hash")
	assert.Error(t, err, "email must be unique")
}

func TestMigrateSQLite_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	require.NoError(t, MigrateSQLite(ctx, db))
	require.NoError(t, MigrateSQLite(ctx, db))

	var applied int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goose_db_version WHERE version_id > 0 AND is_applied`).Scan(&applied))
	assert.Equal(t, 2, applied)
}
