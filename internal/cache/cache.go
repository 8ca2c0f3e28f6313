// Package cache implements the SQLite query cache (§4.4): a mirror of
// the store used for text/priority filtering, id-prefix search,
// count-by-child and "give me everything" queries that are cheaper
// than re-parsing markdown. It is always a soft dependency — every
// read site in internal/write and internal/graph must tolerate its
// absence by falling back to the store.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/divmain/janus/internal/janus"
	_ "modernc.org/sqlite"
)

// Cache wraps a SQLite connection pool the same way the teacher's
// internal/db.DB wraps one: a thin struct around *sql.DB plus the path
// it was opened from, with WAL mode and foreign keys turned on and an
// ordered migration list applied on Open.
type Cache struct {
	db   *sql.DB
	path string
}

// Open creates path's parent directory if needed, opens (or creates)
// the SQLite database, applies PRAGMAs and runs pending migrations.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, janus.NewCacheDataIntegrity("failed to create cache directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	c := &Cache{db: db, path: path}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection pool.
func (c *Cache) Close() error { return c.db.Close() }

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{1, `CREATE TABLE IF NOT EXISTS tickets (
		id TEXT PRIMARY KEY,
		uuid TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority INTEGER NOT NULL,
		ticket_type TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		parent TEXT,
		spawned_from TEXT,
		deps_json TEXT NOT NULL DEFAULT '[]',
		links_json TEXT NOT NULL DEFAULT '[]'
	)`},
	{2, `CREATE INDEX IF NOT EXISTS idx_tickets_spawned_from ON tickets(spawned_from)`},
	{3, `CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		uuid TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		structure_type TEXT NOT NULL,
		sections_json TEXT NOT NULL DEFAULT '[]'
	)`},
}

func (c *Cache) migrate() error {
	if _, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[int]bool{}
	rows, err := c.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}
