package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB returns a migrated database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file was not created")

	var fkEnabled int
	require.NoError(t, db.SqlDB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled))
	assert.Equal(t, 1, fkEnabled)

	var journal string
	require.NoError(t, db.SqlDB.QueryRow("PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.Migrate(context.Background()))
}

func TestHub(t *testing.T) {
	h := newHub()

	themes, unsubscribe := h.subscribe("themes")
	users, unsubscribeUsers := h.subscribe("users")
	defer unsubscribeUsers()

	h.publish("themes")
	h.publish("themes")

	select {
	case <-themes:
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-themes:
		t.Fatal("signals must coalesce")
	default:
	}
	select {
	case <-users:
		t.Fatal("users subscriber must not be signalled")
	default:
	}

	unsubscribe()
	h.publish("themes")
	select {
	case <-themes:
		t.Fatal("unsubscribed channel signalled")
	default:
	}
	_, ok := h.subs["themes"]
	assert.False(t, ok)
}
