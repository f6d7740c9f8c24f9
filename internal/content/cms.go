package content

import (
	"context"
	"log/slog"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/cms"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
)

// CMSStore reads published posts from the headless CMS.
type CMSStore struct {
	client   *cms.Client
	defaults parser.Defaults
	logger   *slog.Logger
}

// NewCMSStore creates a CMS-backed store.
func NewCMSStore(client *cms.Client, defaults parser.Defaults, logger *slog.Logger) *CMSStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CMSStore{client: client, defaults: defaults, logger: logger}
}

// List implements Store. Documents that fail to decode or normalize
// are logged and skipped. Duplicate slugs keep the newest document.
func (s *CMSStore) List(ctx context.Context) ([]models.Post, error) {
	docs, skipped, err := s.client.Posts(ctx)
	if err != nil {
		return nil, err
	}
	posts := s.normalize(docs, skipped)
	SortByPublished(posts)
	return posts, nil
}

// normalize converts documents in the order the CMS returned them.
func (s *CMSStore) normalize(docs []cms.Document, skipped []cms.DecodeError) []models.Post {
	for _, d := range skipped {
		s.logger.Warn("content: skipped cms document", slog.String("id", d.ID), slog.String("error", d.Err.Error()))
	}
	posts := make([]models.Post, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for i := range docs {
		p, err := docs[i].ToPost(s.defaults)
		if err != nil {
			s.logger.Warn("content: skipped cms document", slog.String("id", docs[i].ID), slog.String("error", err.Error()))
			continue
		}
		if _, dup := seen[p.Slug]; dup {
			s.logger.Warn("content: duplicate slug", slog.String("id", docs[i].ID), slog.String("slug", p.Slug))
			continue
		}
		seen[p.Slug] = struct{}{}
		posts = append(posts, *p)
	}
	return posts
}

// GetBySlug implements Store. Slugs are published in normalized form,
// so the lookup matches the CMS slug case-insensitively and falls back
// to the full listing for slugs that normalize differently.
func (s *CMSStore) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	want := parser.Slugify(slug)
	if want == "" {
		return nil, apperr.ErrNotFound
	}

	docs, skipped, err := s.client.PostsBySlug(ctx, want)
	if err != nil {
		return nil, err
	}
	if p := findSlug(s.normalize(docs, skipped), want); p != nil {
		return p, nil
	}

	posts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if p := findSlug(posts, want); p != nil {
		return p, nil
	}
	return nil, apperr.ErrNotFound
}

func findSlug(posts []models.Post, slug string) *models.Post {
	for i := range posts {
		if posts[i].Slug == slug {
			return &posts[i]
		}
	}
	return nil
}

// Categories implements Store.
func (s *CMSStore) Categories(ctx context.Context) ([]models.Category, error) {
	refs, err := s.client.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(refs))
	for _, r := range refs {
		out = append(out, models.Category{Slug: r.Slug, Title: r.Title, Description: r.Description})
	}
	return out, nil
}
