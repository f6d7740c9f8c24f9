package content

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// UnavailableMessage is shown when posts cannot be loaded.
const UnavailableMessage = "目前無法載入文章，請稍後再試。"

// Listing is a page-ready collection. A failing source yields empty
// slices and a non-empty Error instead of an error value.
type Listing struct {
	Posts      []models.Post     `json:"posts"`
	Categories []models.Category `json:"categories"`
	Error      string            `json:"error,omitempty"`
}

// Load fetches posts and categories in parallel and joins both results.
func Load(ctx context.Context, store Store, logger *slog.Logger) Listing {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		posts []models.Post
		cats  []models.Category
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = store.List(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = store.Categories(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Warn("content: source unavailable", slog.String("error", err.Error()))
		return Listing{Posts: []models.Post{}, Categories: []models.Category{}, Error: UnavailableMessage}
	}
	if posts == nil {
		posts = []models.Post{}
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return Listing{Posts: posts, Categories: cats}
}
