package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/parser"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/storage"
)

// Problem describes a content entry that was skipped.
type Problem struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %v", p.Path, p.Err)
}

// FSStore reads Markdown posts from a storage.Provider.
type FSStore struct {
	files    storage.Provider
	defaults parser.Defaults
	vocab    Vocabulary
	logger   *slog.Logger
}

// NewFSStore creates a filesystem-backed store.
func NewFSStore(files storage.Provider, defaults parser.Defaults, vocab Vocabulary, logger *slog.Logger) *FSStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSStore{files: files, defaults: defaults, vocab: vocab, logger: logger}
}

// Root returns the absolute content directory.
func (s *FSStore) Root() string { return s.files.Root() }

// List implements Store.
func (s *FSStore) List(ctx context.Context) ([]models.Post, error) {
	posts, problems, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range problems {
		s.logger.Warn("content: skipped entry", slog.String("path", p.Path), slog.String("error", p.Err.Error()))
	}
	return posts, nil
}

// Scan parses every content file and returns the valid posts together
// with the entries that were skipped. Duplicate slugs keep the first
// file in path order.
func (s *FSStore) Scan(ctx context.Context) ([]models.Post, []Problem, error) {
	files, err := s.files.List("")
	if err != nil {
		return nil, nil, fmt.Errorf("content: list files: %w", err)
	}

	posts := make([]models.Post, 0, len(files))
	var problems []Problem
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		p, err := s.parseFile(f)
		if err != nil {
			problems = append(problems, Problem{Path: f.Path, Err: err})
			continue
		}
		if first, dup := seen[p.Slug]; dup {
			problems = append(problems, Problem{
				Path: f.Path,
				Err:  fmt.Errorf("%w: slug %q already used by %s", apperr.ErrMalformedEntry, p.Slug, first),
			})
			continue
		}
		seen[p.Slug] = f.Path
		posts = append(posts, *p)
	}
	SortByPublished(posts)
	return posts, problems, nil
}

// GetBySlug implements Store. It resolves through the same scan as
// List, so a slug shared by several files names the one List keeps.
// A trailing content extension on slug is ignored.
func (s *FSStore) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return nil, apperr.ErrNotFound
	}
	for _, ext := range storage.ContentExtensions {
		slug = strings.TrimSuffix(slug, ext)
	}
	want := parser.Slugify(slug)

	posts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Slug == want {
			return &posts[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Categories implements Store. Without a configured vocabulary the
// categories in use are derived from the posts.
func (s *FSStore) Categories(ctx context.Context) ([]models.Category, error) {
	if len(s.vocab) > 0 {
		return append([]models.Category(nil), s.vocab...), nil
	}
	posts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return categoriesOf(posts), nil
}

func (s *FSStore) parseFile(f models.SourceFile) (*models.Post, error) {
	data, err := s.files.Read(f.Path)
	if err != nil {
		return nil, err
	}
	p, err := parser.ParsePost(data, parser.Options{Defaults: s.defaults, FallbackDate: f.ModTime})
	if err != nil {
		return nil, err
	}
	if len(s.vocab) > 0 {
		title, ok := s.vocab.Resolve(p.Category)
		if !ok {
			s.logger.Warn("content: unknown category dropped",
				slog.String("path", f.Path), slog.String("category", p.Category))
		}
		p.Category = title
	}
	return p, nil
}

func categoriesOf(posts []models.Post) []models.Category {
	seen := make(map[string]struct{})
	var out []models.Category
	for _, p := range posts {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, models.Category{Slug: parser.Slugify(p.Category), Title: p.Category})
	}
	return out
}
