package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/apperr"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/contact"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/query"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/telemetry"
)

// Handler holds API route handlers.
type Handler struct {
	svc     *postservice.Service
	contact *contact.Service
	sink    telemetry.Sink
}

// NewHandler creates a new Handler. A nil sink discards events.
func NewHandler(svc *postservice.Service, cs *contact.Service, sink telemetry.Sink) *Handler {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Handler{svc: svc, contact: cs, sink: sink}
}

// specFromQuery reads listing parameters. Malformed numbers fall back
// to the defaults.
func specFromQuery(r *http.Request) query.Spec {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return query.Spec{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: size,
	}.Normalized()
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts with filtering, sorting and pagination
//	@Tags			posts
//	@Produce		json
//	@Param			category	query		string	false	"Category title, or all"
//	@Param			tag			query		string	false	"Exact tag"
//	@Param			q			query		string	false	"Case-insensitive title or summary substring"
//	@Param			sort		query		string	false	"Sort order"	Enums(latest, popular)
//	@Param			page		query		int		false	"1-based page"
//	@Param			pageSize	query		int		false	"Page size"
//	@Success		200			{object}	PostListResponse
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListPosts(r.Context(), specFromQuery(r)))
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a post with metadata, structured data and related posts
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostDetailResponse
//	@Failure		404		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	d, err := h.svc.GetPost(r.Context(), slug)
	if err != nil {
		writeError(w, "get post", err)
		return
	}
	h.sink.Emit(r.Context(), telemetry.New(telemetry.EventViewPost, map[string]any{
		"item_id":   d.Post.Slug,
		"item_name": d.Post.Title,
		"category":  d.Post.Category,
	}))
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	h.sink.Emit(r.Context(), telemetry.New(telemetry.EventSearch, map[string]any{
		"search_term": q,
		"results":     len(results),
	}))
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Categories handles GET /api/categories.
//
//	@Summary		List the category vocabulary with post counts
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, "list categories", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// ListCases handles GET /api/cases.
//
//	@Summary		List case studies, featured first
//	@Tags			cases
//	@Produce		json
//	@Param			featured	query		bool	false	"Only featured case studies"
//	@Success		200			{object}	CasesResponse
//	@Router			/cases [get]
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	featured, _ := strconv.ParseBool(r.URL.Query().Get("featured"))
	writeJSON(w, http.StatusOK, CasesResponse{Cases: h.svc.Cases(featured)})
}

// GetCase handles GET /api/cases/{id}.
//
//	@Summary		Get a case study with structured data
//	@Tags			cases
//	@Produce		json
//	@Param			id	path		string	true	"Case id"
//	@Success		200	{object}	CaseDetailResponse
//	@Failure		404	{object}	errResponse
//	@Router			/cases/{id} [get]
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Case(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get case", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Contact handles POST /api/contact.
//
//	@Summary		Submit the contact form
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContactRequest	true	"Contact form"
//	@Success		200		{object}	ContactResponse
//	@Failure		400		{object}	ContactResponse
//	@Failure		500		{object}	ContactResponse
//	@Router			/contact [post]
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ContactResponse{Message: contact.MessageFailed})
		return
	}
	if err := h.contact.Submit(r.Context(), req); err != nil {
		if apperr.IsValidation(err) {
			writeJSON(w, http.StatusBadRequest, ContactResponse{Message: contact.MessageRequired})
			return
		}
		slog.Error("contact submit failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ContactResponse{Message: contact.MessageFailed})
		return
	}
	writeJSON(w, http.StatusOK, ContactResponse{Success: true, Message: contact.MessageSuccess})
}

// Reindex handles POST /api/admin/reindex.
//
//	@Summary		Synchronize the post index with the content source
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Failure		401	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	changes, err := h.svc.Reindex(r.Context())
	if err != nil {
		if errors.Is(err, postservice.ErrIndexDisabled) {
			writeJSON(w, http.StatusConflict, errorBody(err.Error()))
			return
		}
		writeError(w, "reindex", err)
		return
	}
	if changes == nil {
		changes = []index.Change{}
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Changes: changes})
}
