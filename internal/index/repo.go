package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/seo"
)

// SearchResult is one full-text hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// CategoryCount is a category with its number of indexed posts.
type CategoryCount struct {
	Category string `json:"category"`
	Posts    int    `json:"posts"`
}

// UpsertPost inserts or replaces a post, its tags and its FTS entry in
// one transaction.
func (db *DB) UpsertPost(ctx context.Context, p *models.Post, checksum string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index: encode post: %w", err)
	}
	body := seo.StripHTML(p.Content)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO posts (slug, title, summary, category, tags, published_at, views, checksum, body, doc, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slug) DO UPDATE SET
			title        = excluded.title,
			summary      = excluded.summary,
			category     = excluded.category,
			tags         = excluded.tags,
			published_at = excluded.published_at,
			views        = excluded.views,
			checksum     = excluded.checksum,
			body         = excluded.body,
			doc          = excluded.doc,
			indexed_at   = excluded.indexed_at
	`, p.Slug, p.Title, p.Summary, p.Category, string(tagsJSON), p.PublishedAt.Unix(), p.Views, checksum, body, string(doc))
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	if err := ftsUpsert(ctx, tx, p.Slug, p.Title, p.Summary, body, tags); err != nil {
		return err
	}

	_, _ = tx.ExecContext(ctx, `DELETE FROM post_tags WHERE slug = ?`, p.Slug)
	if len(tags) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO post_tags (slug, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range tags {
			if _, err := stmt.ExecContext(ctx, p.Slug, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePost removes a post with its tags and FTS entry.
func (db *DB) DeletePost(ctx context.Context, slug string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(ctx, tx, slug)
	_, _ = tx.ExecContext(ctx, `DELETE FROM post_tags WHERE slug = ?`, slug)
	if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete post: %w", err)
	}
	return tx.Commit()
}

// GetPost returns an indexed post or apperr.ErrNotFound.
func (db *DB) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	var doc string
	err := db.conn.QueryRowContext(ctx, `SELECT doc FROM posts WHERE slug = ?`, slug).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	var p models.Post
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("index: decode post %q: %w", slug, err)
	}
	return &p, nil
}

// ListPosts applies the listing filters, order and page window in SQL.
// Search is a case-insensitive substring match on title and summary.
func (db *DB) ListPosts(ctx context.Context, spec query.Spec) (query.Page, error) {
	spec = spec.Normalized()

	var where []string
	var args []any
	if spec.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, spec.Category)
	}
	if spec.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM post_tags t WHERE t.slug = posts.slug AND t.tag = ?)`)
		args = append(args, spec.Tag)
	}
	if spec.Search != "" {
		q := strings.ToLower(spec.Search)
		where = append(where, `(instr(fold(title), ?) > 0 OR instr(fold(summary), ?) > 0)`)
		args = append(args, q, q)
	}

	stmt := `SELECT doc FROM posts`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, ` AND `)
	}
	if spec.Sort == query.SortPopular {
		stmt += ` ORDER BY views DESC, published_at DESC, slug`
	} else {
		stmt += ` ORDER BY published_at DESC, slug`
	}
	stmt += ` LIMIT ? OFFSET ?`
	args = append(args, spec.PageSize, spec.Offset())

	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return query.Page{}, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	items := make([]models.Post, 0, spec.PageSize)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return query.Page{}, err
		}
		var p models.Post
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return query.Page{}, fmt.Errorf("index: decode post: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return query.Page{}, err
	}
	return query.Page{Items: items, Page: spec.Page, HasMore: len(items) == spec.PageSize}, nil
}

// Categories returns every non-empty category with its post count.
func (db *DB) Categories(ctx context.Context) ([]CategoryCount, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT category, count(*) FROM posts
		WHERE category != ''
		GROUP BY category
		ORDER BY count(*) DESC, category
	`)
	if err != nil {
		return nil, fmt.Errorf("index: categories: %w", err)
	}
	defer rows.Close()
	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Posts); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllChecksums maps every indexed slug to its content fingerprint.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT slug, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed posts.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
