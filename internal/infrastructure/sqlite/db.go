// Package sqlite provides the SQLite-backed persistence layer: registry
// snapshots, the append-only event journal, and the market ledger.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/cloudwalk/lending-registry/internal/log"
)

// schemaVersion is compared against PRAGMA user_version on open.
const schemaVersion = 1

const schemaV1 = `
CREATE TABLE registry_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	initialized INTEGER NOT NULL,
	ledger TEXT NOT NULL,
	credit_line_factory TEXT NOT NULL,
	liquidity_pool_factory TEXT NOT NULL,
	paused INTEGER NOT NULL,
	module_family TEXT NOT NULL,
	module_version TEXT NOT NULL,
	policy TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE role_holders (
	policy TEXT NOT NULL,
	holder TEXT NOT NULL,
	PRIMARY KEY (policy, holder)
);

CREATE TABLE events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	occurred_at DATETIME NOT NULL,
	type TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE TABLE credit_lines (
	resource TEXT PRIMARY KEY,
	creator TEXT NOT NULL,
	registered_at DATETIME NOT NULL
);
CREATE INDEX idx_credit_lines_creator ON credit_lines(creator);

CREATE TABLE liquidity_pools (
	resource TEXT PRIMARY KEY,
	creator TEXT NOT NULL,
	registered_at DATETIME NOT NULL
);
CREATE INDEX idx_liquidity_pools_creator ON liquidity_pools(creator);
`

// DB wraps the registry database connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if necessary) the registry database at path and
// brings the schema up to date. The parent directory is created when
// missing.
func NewDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "database opened", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// migrate walks user_version up to schemaVersion one step at a time.
func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
	}

	for version < schemaVersion {
		next := version + 1
		var stmt string
		switch next {
		case 1:
			stmt = schemaV1
		default:
			return fmt.Errorf("no migration for schema version %d", next)
		}
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate to schema version %d: %w", next, err)
		}
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", next)); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", next, err)
		}
		log.Info(log.CatDB, "schema migrated", "version", next)
		version = next
	}
	return nil
}

// Conn exposes the underlying connection for repositories.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
