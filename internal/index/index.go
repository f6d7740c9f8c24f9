package index

import (
	"context"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
)

// PostIndex is the read/write surface of the post index. Handlers and
// tools depend on it rather than on *DB.
type PostIndex interface {
	UpsertPost(ctx context.Context, p *models.Post, checksum string) error
	DeletePost(ctx context.Context, slug string) error
	GetPost(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, spec query.Spec) (query.Page, error)
	Search(ctx context.Context, q string, limit int) ([]SearchResult, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
	AllChecksums(ctx context.Context) (map[string]string, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

var _ PostIndex = (*DB)(nil)
