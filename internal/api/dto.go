package api

import (
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/index"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/postservice"
)

// PostListResponse is one page of the post listing (aliased from the domain layer).
type PostListResponse = postservice.ListResult

// PostDetailResponse is the full post payload (aliased from the domain layer).
type PostDetailResponse = postservice.PostDetail

// CaseDetailResponse is the full case-study payload (aliased from the domain layer).
type CaseDetailResponse = postservice.CaseDetail

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// CategoriesResponse wraps the category vocabulary with post counts.
type CategoriesResponse struct {
	Categories []postservice.CategorySummary `json:"categories" validate:"required"`
}

// CasesResponse wraps the case studies in display order.
type CasesResponse struct {
	Cases []models.CaseStudy `json:"cases" validate:"required"`
}

// ContactRequest is the contact form body. company and title are
// accepted as aliases of clinic and position.
type ContactRequest = models.ContactFormData

// ContactResponse is the outcome of a contact submission.
type ContactResponse struct {
	Success bool   `json:"success" example:"true" validate:"required"`
	Message string `json:"message" example:"表單提交成功！我們會盡快與您聯繫。" validate:"required"`
}

// ReindexResponse lists the index changes applied by a reindex.
type ReindexResponse struct {
	Changes []index.Change `json:"changes" validate:"required"`
}
