// Package postservice assembles page-ready post and case-study payloads
// from the content store, the post index and the SEO builders. The HTTP
// API, the MCP server and the CLI share it.
package postservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/casestudy"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/content"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/seo"
)

// RelatedLimit is the number of related entries attached to a detail payload.
const RelatedLimit = 3

// ErrIndexDisabled is returned by operations that need the post index
// when the service runs without one.
var ErrIndexDisabled = errors.New("post index disabled")

// ListResult is one page of the post listing. A failing source yields
// an empty page with Error set.
type ListResult struct {
	Posts   []models.Post `json:"posts"`
	Page    int           `json:"page"`
	HasMore bool          `json:"hasMore"`
	Error   string        `json:"error,omitempty"`
}

// PostDetail is everything a post page renders.
type PostDetail struct {
	Post           *models.Post    `json:"post"`
	Metadata       seo.Metadata    `json:"metadata"`
	StructuredData json.RawMessage `json:"structuredData"`
	Breadcrumbs    []seo.Crumb     `json:"breadcrumbs"`
	Related        []models.Post   `json:"related"`
}

// CaseDetail is everything a case-study page renders.
type CaseDetail struct {
	Case           models.CaseStudy   `json:"case"`
	StructuredData json.RawMessage    `json:"structuredData"`
	Related        []models.CaseStudy `json:"related"`
}

// Report is the result of a content check.
type Report struct {
	Posts    int                 `json:"posts"`
	Problems []string            `json:"problems"`
	Dangling map[string][]string `json:"dangling,omitempty"`
}

// OK reports whether the check found nothing to fix.
func (r Report) OK() bool {
	return len(r.Problems) == 0 && len(r.Dangling) == 0
}

// scanner is implemented by stores that can report malformed entries.
type scanner interface {
	Scan(ctx context.Context) ([]models.Post, []content.Problem, error)
}

// Service coordinates content lookups for every outer surface.
type Service struct {
	store    content.Store
	db       index.PostIndex
	cases    *casestudy.Catalog
	site     seo.Site
	sitemap  seo.SitemapConfig
	robots   []seo.RobotsGroup
	logger   *slog.Logger
	now      func() time.Time
	onChange func(index.Change)
}

// Option configures a Service.
type Option func(*Service)

// WithIndex serves listings and search from the post index.
func WithIndex(db index.PostIndex) Option {
	return func(s *Service) { s.db = db }
}

// WithCases sets the case-study catalog.
func WithCases(c *casestudy.Catalog) Option {
	return func(s *Service) { s.cases = c }
}

// WithSite sets the publisher identity.
func WithSite(site seo.Site) Option {
	return func(s *Service) { s.site = site }
}

// WithSitemap sets the sitemap route table and keyword policy.
func WithSitemap(cfg seo.SitemapConfig) Option {
	return func(s *Service) { s.sitemap = cfg }
}

// WithRobots sets the robots.txt crawler groups.
func WithRobots(groups []seo.RobotsGroup) Option {
	return func(s *Service) { s.robots = groups }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithChangeHook is called for every change applied by Reindex.
func WithChangeHook(fn func(index.Change)) Option {
	return func(s *Service) { s.onChange = fn }
}

// New creates a Service reading from store.
func New(store content.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		site:    seo.DefaultSite(),
		sitemap: seo.DefaultSitemapConfig(),
		robots:  seo.DefaultRobotsGroups(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cases == nil {
		s.cases = casestudy.Default()
	}
	return s
}

// Site returns the publisher identity.
func (s *Service) Site() seo.Site { return s.site }

// ListPosts returns one filtered, sorted page of posts.
func (s *Service) ListPosts(ctx context.Context, spec query.Spec) ListResult {
	spec = spec.Normalized()
	if s.db != nil {
		page, err := s.db.ListPosts(ctx, spec)
		if err == nil {
			return toResult(page)
		}
		s.logger.Warn("postservice: index listing failed, using store",
			slog.String("error", err.Error()))
	}
	posts, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("postservice: source unavailable", slog.String("error", err.Error()))
		return ListResult{Posts: []models.Post{}, Page: spec.Page, Error: content.UnavailableMessage}
	}
	return toResult(query.Posts(posts, spec))
}

func toResult(p query.Page) ListResult {
	posts := p.Items
	if posts == nil {
		posts = []models.Post{}
	}
	return ListResult{Posts: posts, Page: p.Page, HasMore: p.HasMore}
}

// Listing returns all posts and categories, degrading to an error
// message when the source fails.
func (s *Service) Listing(ctx context.Context) content.Listing {
	return content.Load(ctx, s.store, s.logger)
}

// CategorySummary is a vocabulary entry with its number of posts.
type CategorySummary struct {
	models.Category
	Posts int `json:"posts"`
}

// Categories returns the category vocabulary. Post counts come from
// the index when one is configured, else from the store listing.
func (s *Service) Categories(ctx context.Context) ([]CategorySummary, error) {
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.categoryCounts(ctx)
	if err != nil {
		s.logger.Warn("postservice: category counts unavailable", slog.String("error", err.Error()))
	}
	out := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategorySummary{Category: c, Posts: counts[c.Title]})
	}
	return out, nil
}

func (s *Service) categoryCounts(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	if s.db != nil {
		cc, err := s.db.Categories(ctx)
		if err == nil {
			for _, c := range cc {
				counts[c.Category] = c.Posts
			}
			return counts, nil
		}
		s.logger.Warn("postservice: index category counts failed, using store",
			slog.String("error", err.Error()))
	}
	posts, err := s.store.List(ctx)
	if err != nil {
		return counts, err
	}
	for i := range posts {
		if posts[i].Category != "" {
			counts[posts[i].Category]++
		}
	}
	return counts, nil
}

// GetPost resolves slug and derives its metadata, JSON-LD graph,
// breadcrumbs and related posts.
func (s *Service) GetPost(ctx context.Context, slug string) (*PostDetail, error) {
	p, err := s.lookup(ctx, slug)
	if err != nil {
		return nil, err
	}
	graph := seo.BuildPostGraph(s.site, p, seo.ExtractSemanticBlocks(p.Content))
	data, err := graph.JSON()
	if err != nil {
		return nil, fmt.Errorf("postservice: encode graph: %w", err)
	}

	related := []models.Post{}
	if all, err := s.store.List(ctx); err != nil {
		s.logger.Warn("postservice: related posts unavailable",
			slog.String("slug", slug), slog.String("error", err.Error()))
	} else {
		related = content.Related(p, all, RelatedLimit)
	}

	return &PostDetail{
		Post:           p,
		Metadata:       seo.Synthesize(s.site, p),
		StructuredData: data,
		Breadcrumbs:    seo.Crumbs(s.site, "/blog/"+p.Slug, p.Title),
		Related:        related,
	}, nil
}

// lookup answers from the index when it holds slug verbatim and falls
// back to the store, which also resolves unnormalized slugs.
func (s *Service) lookup(ctx context.Context, slug string) (*models.Post, error) {
	if s.db != nil {
		p, err := s.db.GetPost(ctx, slug)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("postservice: index lookup failed, using store",
				slog.String("slug", slug), slog.String("error", err.Error()))
		}
	}
	return s.store.GetBySlug(ctx, slug)
}

// Search finds posts matching q. The index answers when present;
// otherwise the store listing is filtered in memory.
func (s *Service) Search(ctx context.Context, q string, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.db != nil {
		res, err := s.db.Search(ctx, q, limit)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = []index.SearchResult{}
		}
		return res, nil
	}
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []index.SearchResult{}
	spec := query.Spec{Search: q}
	for i := range posts {
		if len(out) == limit {
			break
		}
		if !query.Matches(&posts[i], spec) {
			continue
		}
		out = append(out, index.SearchResult{
			Slug:    posts[i].Slug,
			Title:   posts[i].Title,
			Snippet: seo.Description(&posts[i]),
		})
	}
	return out, nil
}

// Cases returns case studies in display order, or only the featured
// ones when featured is set.
func (s *Service) Cases(featured bool) []models.CaseStudy {
	if featured {
		out := s.cases.Featured()
		if out == nil {
			out = []models.CaseStudy{}
		}
		return out
	}
	return s.cases.Sorted()
}

// Case returns one case study with its JSON-LD graph.
func (s *Service) Case(id string) (*CaseDetail, error) {
	c, err := s.cases.Get(id)
	if err != nil {
		return nil, err
	}
	data, err := seo.BuildCaseStudyGraph(s.site, &c).JSON()
	if err != nil {
		return nil, fmt.Errorf("postservice: encode graph: %w", err)
	}
	return &CaseDetail{Case: c, StructuredData: data, Related: s.cases.Related(id, RelatedLimit)}, nil
}

// Sitemap renders sitemap.xml. Posts are omitted when the source fails.
func (s *Service) Sitemap(ctx context.Context) ([]byte, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn("postservice: sitemap without posts", slog.String("error", err.Error()))
		posts = nil
	}
	return seo.BuildSitemap(s.site, s.sitemap, posts, s.cases.All(), s.now()).XML()
}

// Robots renders robots.txt.
func (s *Service) Robots() string {
	return seo.BuildRobots(s.site, s.robots)
}

// Reindex synchronizes the post index with the store.
func (s *Service) Reindex(ctx context.Context) ([]index.Change, error) {
	if s.db == nil {
		return nil, ErrIndexDisabled
	}
	changes, err := index.Sync(ctx, s.db, s.store, s.logger)
	if err != nil {
		return nil, err
	}
	if s.onChange != nil {
		for _, c := range changes {
			s.onChange(c)
		}
	}
	return changes, nil
}

// Ready reports whether the store and the index answer.
func (s *Service) Ready(ctx context.Context) error {
	if s.db != nil {
		n, err := s.db.Count(ctx)
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		s.logger.Debug("postservice: index ready", slog.Int("posts", n))
	}
	if _, err := s.store.Categories(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Check lists every post, reporting malformed entries, duplicate slugs
// and JSON-LD graphs with dangling references.
func (s *Service) Check(ctx context.Context) (Report, error) {
	var (
		posts    []models.Post
		problems []content.Problem
		err      error
	)
	if sc, ok := s.store.(scanner); ok {
		posts, problems, err = sc.Scan(ctx)
	} else {
		posts, err = s.store.List(ctx)
	}
	if err != nil {
		return Report{}, err
	}

	rep := Report{Posts: len(posts), Problems: []string{}}
	for _, p := range problems {
		rep.Problems = append(rep.Problems, p.String())
	}
	for i := range posts {
		p := &posts[i]
		g := seo.BuildPostGraph(s.site, p, seo.ExtractSemanticBlocks(p.Content))
		if refs := g.DanglingRefs(); len(refs) > 0 {
			if rep.Dangling == nil {
				rep.Dangling = map[string][]string{}
			}
			rep.Dangling[p.Slug] = refs
		}
	}
	return rep, nil
}

// IsNotFound reports whether err means the requested entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
