package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/checksum"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/web"
)

// PageHandler serves server-rendered pages and crawler documents.
type PageHandler struct {
	svc   *postservice.Service
	pages *web.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(svc *postservice.Service, pages *web.Renderer) *PageHandler {
	return &PageHandler{svc: svc, pages: pages}
}

// Post handles GET /blog/{slug}.
func (h *PageHandler) Post(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.Post(w, d); err != nil {
		slog.Error("render post failed", slog.String("slug", d.Post.Slug), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Case handles GET /case/{id}.
func (h *PageHandler) Case(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Case(chi.URLParam(r, "id"))
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.Case(w, d); err != nil {
		slog.Error("render case failed", slog.String("id", d.Case.ID), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, apperr.ErrNotFound) {
		slog.Error("page failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.pages.NotFound(w); err != nil {
		slog.Error("render not-found failed", slog.String("error", err.Error()))
	}
}

// Sitemap handles GET /sitemap.xml.
//
//	@Summary		Sitemap of static routes, case studies and posts
//	@Tags			seo
//	@Produce		xml
//	@Success		200
//	@Router			/sitemap.xml [get]
func (h *PageHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.Sitemap(r.Context())
	if err != nil {
		slog.Error("sitemap failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	etag := `"` + checksum.Sum(body) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

// Robots handles GET /robots.txt.
//
//	@Summary		Crawler policy
//	@Tags			seo
//	@Produce		plain
//	@Success		200
//	@Router			/robots.txt [get]
func (h *PageHandler) Robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.svc.Robots()))
}
