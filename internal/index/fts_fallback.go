//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the posts table itself is searched.
func initFTS(context.Context, *sql.DB) error { return nil }

func ftsUpsert(context.Context, *sql.Tx, string, string, string, string, []string) error {
	return nil
}

func ftsDelete(context.Context, *sql.Tx, string) {}

// Search matches every whitespace-separated term as a case-insensitive
// substring of the title, summary, body or tags.
func (db *DB) Search(ctx context.Context, q string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	terms := strings.Fields(strings.ToLower(q))
	if len(terms) == 0 {
		return nil, nil
	}
	var where []string
	var args []any
	for _, t := range terms {
		where = append(where, `(instr(fold(title), ?) > 0 OR instr(fold(summary), ?) > 0 OR instr(fold(body), ?) > 0 OR instr(fold(tags), ?) > 0)`)
		args = append(args, t, t, t, t)
	}
	args = append(args, limit)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT slug, title, substr(body, 1, 160)
		FROM posts
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY published_at DESC, slug
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
