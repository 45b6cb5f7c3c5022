package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNewDB_CreatesDirectory verifies that NewDB creates the parent directory if missing.
func TestNewDB_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "deep", "registry.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed even with nested non-existent directories")
	defer db.Close()

	_, err = os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err, "Directory should exist after NewDB")
}

// TestNewDB_CreatesDatabaseFile verifies that the database file exists after open.
func TestNewDB_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "registry.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "Database file should exist after NewDB")
}

// TestNewDB_WALMode verifies that WAL mode is enabled via PRAGMA query.
func TestNewDB_WALMode(t *testing.T) {
	db := newTestDB(t)

	var journalMode string
	err := db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	require.NoError(t, err)
	assert.Equal(t, "wal", journalMode)
}

// TestNewDB_SchemaVersion verifies that migrations stamp user_version.
func TestNewDB_SchemaVersion(t *testing.T) {
	db := newTestDB(t)

	var version int
	err := db.conn.QueryRow("PRAGMA user_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)
}

// TestNewDB_ReopenIsIdempotent verifies that reopening an existing database
// does not rerun migrations or lose data.
func TestNewDB_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "registry.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	_, err = db.conn.Exec(
		`INSERT INTO events (occurred_at, type, payload) VALUES (CURRENT_TIMESTAMP, 'paused', '{}')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := NewDB(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	err = reopened.conn.QueryRow(`SELECT COUNT(1) FROM events`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
