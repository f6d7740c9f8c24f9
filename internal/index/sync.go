package index

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/checksum"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/content"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// Change kinds reported by Sync.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change is one index mutation made by Sync.
type Change struct {
	Kind string `json:"kind"`
	Slug string `json:"slug"`
}

// Fingerprint is the content checksum of a canonical post.
func Fingerprint(p *models.Post) string {
	data, _ := json.Marshal(p)
	return checksum.Sum(data)
}

// Sync brings the index up to date with store:
//   - new and changed posts are upserted
//   - posts no longer in the store are deleted
//
// A store failure leaves the index untouched.
func Sync(ctx context.Context, db PostIndex, store content.Store, logger *slog.Logger) ([]Change, error) {
	posts, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("index: list store: %w", err)
	}
	checksums, err := db.AllChecksums(ctx)
	if err != nil {
		return nil, err
	}

	var changes []Change
	live := make(map[string]struct{}, len(posts))
	for i := range posts {
		p := &posts[i]
		live[p.Slug] = struct{}{}

		fp := Fingerprint(p)
		old, known := checksums[p.Slug]
		if known && old == fp {
			continue
		}
		if err := db.UpsertPost(ctx, p, fp); err != nil {
			logger.Warn("sync: index failed", slog.String("slug", p.Slug), slog.String("error", err.Error()))
			continue
		}
		kind := ChangeUpdated
		if !known {
			kind = ChangeCreated
		}
		logger.Debug("sync: indexed", slog.String("slug", p.Slug), slog.String("op", kind))
		changes = append(changes, Change{Kind: kind, Slug: p.Slug})
	}

	stale := make([]string, 0)
	for slug := range checksums {
		if _, ok := live[slug]; !ok {
			stale = append(stale, slug)
		}
	}
	sort.Strings(stale)
	for _, slug := range stale {
		if err := db.DeletePost(ctx, slug); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", slug), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("slug", slug))
		changes = append(changes, Change{Kind: ChangeDeleted, Slug: slug})
	}
	return changes, nil
}
