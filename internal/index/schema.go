// Package index keeps a SQLite copy of the content store for listing
// and full-text search, with optional FTS5 support.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with a fold() SQL function that lowercases
// with Unicode rules. The built-in lower() folds ASCII only.
const driverName = "sqlite3_fold"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	slug         TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	published_at INTEGER NOT NULL DEFAULT 0,
	views        INTEGER NOT NULL DEFAULT 0,
	checksum     TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL DEFAULT '',
	doc          TEXT NOT NULL DEFAULT '{}',
	indexed_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS post_tags (
	slug TEXT NOT NULL,
	tag  TEXT NOT NULL,
	UNIQUE(slug, tag)
);

CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published_at DESC, slug);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);
`

// DB wraps a sql.DB with index operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open(driverName, dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
