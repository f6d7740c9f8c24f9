// Package content resolves canonical posts from the filesystem or the
// headless CMS behind one interface.
package content

import (
	"context"
	"sort"
	"strings"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Store is a read-only source of canonical posts. Implementations are
// selected at composition time; callers never branch on the origin.
type Store interface {
	// List returns every valid post sorted by publishedAt descending.
	// Malformed entries are skipped and logged.
	List(ctx context.Context) ([]models.Post, error)
	// GetBySlug resolves one post or returns apperr.ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	// Categories returns the category vocabulary.
	Categories(ctx context.Context) ([]models.Category, error)
}

// SortByPublished orders posts newest first. Equal timestamps fall back
// to slug order so listings are deterministic.
func SortByPublished(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

// Vocabulary is the closed, configured set of categories.
type Vocabulary []models.Category

// Resolve maps a raw category (title or slug, case-insensitive) to its
// canonical title.
func (v Vocabulary) Resolve(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	for _, c := range v {
		if strings.EqualFold(c.Title, raw) || strings.EqualFold(c.Slug, raw) {
			return c.Title, true
		}
	}
	return "", false
}
