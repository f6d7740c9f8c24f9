package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/contact"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/telemetry"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/web"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Posts   *postservice.Service
	Contact *contact.Service
	Pages   *web.Renderer
	Sink    telemetry.Sink
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// AssetsDir, if set, is served read-only at /images/*.
	AssetsDir string
	// AuthEnabled and AuthToken guard the /api/admin routes.
	AuthEnabled bool
	AuthToken   string
}

// NewRouter creates a chi router with the JSON API routes. Mount it at /api.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d.Posts, d.Contact, d.Sink)

	r := chi.NewRouter()

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/categories", h.Categories)

	// Search.
	r.Get("/search", h.Search)

	// Case studies.
	r.Get("/cases", h.ListCases)
	r.Get("/cases/{id}", h.GetCase)

	// Contact intake.
	if d.Contact != nil {
		r.Post("/contact", h.Contact)
	}

	// SSE content events.
	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	// Admin routes.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(d.AuthEnabled, d.AuthToken))
		r.Post("/admin/reindex", h.Reindex)
	})

	return r
}

// NewSiteRouter creates a chi router with the pages and crawler
// documents. Mount it at the site root.
func NewSiteRouter(d Deps) chi.Router {
	ph := NewPageHandler(d.Posts, d.Pages)

	r := chi.NewRouter()
	r.With(CacheControl(3600)).Get("/sitemap.xml", ph.Sitemap)
	r.With(CacheControl(86400)).Get("/robots.txt", ph.Robots)
	r.Get("/blog/{slug}", ph.Post)
	r.Get("/case/{id}", ph.Case)

	if d.AssetsDir != "" {
		ah := NewAssetHandler(d.AssetsDir)
		r.With(CacheControl(604800)).Get("/images/*", ah.ServeFile)
	}
	return r
}
